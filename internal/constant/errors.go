package constant

import (
	"net/http"

	"github.com/duccv/contact-addin/internal/model/response"
)

var BAD_REQUEST = response.ResponseData{
	Ec:    http.StatusBadRequest,
	Error: "Bad request",
}

var VALIDATION_FAILED = response.ResponseData{
	Ec:    http.StatusBadRequest,
	Error: "Validation failed",
}

var MISSING_TOKEN = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Access denied. No token provided or invalid format.",
	Hint:  `Include "Authorization: Bearer <token>" in your request headers`,
}

var EMPTY_TOKEN = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Access denied. Token is empty.",
}

var INVALID_TOKEN = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Invalid token",
}

var TOKEN_EXPIRED = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Token expired",
	Hint:  "Please log in again to get a new token",
}

var UNAUTHORIZED = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Authentication failed",
}

var USER_NO_LONGER_EXISTS = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "User no longer exists",
}

var INVALID_CREDENTIALS = response.ResponseData{
	Ec:    http.StatusUnauthorized,
	Error: "Invalid credentials",
}

var USER_EXISTS = response.ResponseData{
	Ec:    http.StatusConflict,
	Error: "User with this email already exists",
}

var FORBIDDEN = response.ResponseData{
	Ec:    http.StatusForbidden,
	Error: "Forbidden",
}

var NOT_FOUND = response.ResponseData{
	Ec:    http.StatusNotFound,
	Error: "Endpoint not found",
}

var TOO_MANY_REQUESTS = response.ResponseData{
	Ec:    http.StatusTooManyRequests,
	Error: "Too many requests from this IP, please try again later.",
}

var TOO_MANY_LOGIN_ATTEMPTS = response.ResponseData{
	Ec:    http.StatusTooManyRequests,
	Error: "Too many login attempts from this IP, please try again later.",
}

var AUTH_INTERNAL_ERROR = response.ResponseData{
	Ec:    http.StatusInternalServerError,
	Error: "Internal server error during authentication",
}

var INTERNAL_SERVER_ERROR = response.ResponseData{
	Ec:    http.StatusInternalServerError,
	Error: "Internal server error",
	Msg:   "Something went wrong",
}
