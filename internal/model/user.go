package model

// UserProfile is the server-owned description of the logged-in user.
// It is overwritten wholesale on every login or profile refresh and is
// only used for display; authorization decisions rely on the tokens.
type UserProfile struct {
	// ID is the server-side user identifier.
	ID int64 `json:"id"`

	// Username is the login identifier.
	Username string `json:"username"`

	// Email is the account email address.
	Email string `json:"email"`

	// FullName is the display name.
	FullName string `json:"fullName"`

	// Role is the server-assigned role label (e.g., "admin", "member").
	Role string `json:"role"`
}
