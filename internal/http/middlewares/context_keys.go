package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxSubject   = "auth.subject"
	CtxRole      = "auth.role"
	CtxUserID    = "user_id"
)
