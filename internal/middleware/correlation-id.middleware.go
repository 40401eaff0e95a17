package middleware

import (
	"context"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationIDHeader = "X-Correlation-ID"

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.New().String()
		}
		ctx := context.WithValue(c.Request.Context(), constant.CorrelationIDKey, cid)
		c.Request = c.Request.WithContext(ctx)
		c.Set(constant.RequestIDKey, cid)
		c.Writer.Header().Set(CorrelationIDHeader, cid)
		c.Next()
	}
}
