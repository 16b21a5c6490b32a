package types

// Session is the caller's identity for a single operation. UserID and
// Email come from the verified access token; the rest is loaded from
// the users row on each request. The session cookie is a rendering
// convenience only and is never trusted for authorization.
type Session struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
}
