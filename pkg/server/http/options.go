package http_server

import (
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	_defaultAddr            = ":80"
	_defaultTimeout         = 30 * time.Second
	_defaultShutdownTimeout = 10 * time.Second
)

// Option -.
type Option func(*Server)

// Port -.
func Port(port int) Option {
	return func(s *Server) {
		s.address = net.JoinHostPort("", strconv.Itoa(port))
	}
}

// Timeout bounds every request handled under the API prefix.
func Timeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// ShutdownTimeout -.
func ShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// APIMiddleware appends handlers run for every route under the API prefix,
// after the built-in stack.
func APIMiddleware(handlers ...gin.HandlerFunc) Option {
	return func(s *Server) {
		s.apiMiddleware = append(s.apiMiddleware, handlers...)
	}
}
