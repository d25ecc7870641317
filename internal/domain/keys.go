package domain

// ContextKey names values the HTTP layer stores on a request.
type ContextKey string

// Keys set by the auth middleware are authoritative: the role comes from the
// users table, not the token.
const (
	KeyUserID    ContextKey = "UserID"
	KeyUserEmail ContextKey = "Email"
	KeyUserRole  ContextKey = "Role"
	KeyRequestID ContextKey = "RequestID"
)
