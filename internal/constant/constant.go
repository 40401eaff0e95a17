package constant

// Constant package provides constants used throughout the application.

type ctxKey string

const (
	CorrelationIDKey ctxKey = "CorrelationID"
)

// Keys stored on *gin.Context.
const (
	PrincipalKey  = "principal"
	ClaimsKey     = "jwtPayload"
	RequestIDKey  = "requestId"
	ValidatedBody = "validatedBody"
	ValidatedQry  = "validatedQuery"
)

const (
	TokenIssuer   = "outlook-addin-api"
	TokenAudience = "outlook-addin-client"
)
