package jwt

import "github.com/golang-jwt/jwt"

// Payload is the identity token issued by the account service.
// The chat server only verifies it; issuing tokens is not its job.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user identifier, the same id clubs list as admin or member.
	ID string `json:"id"`

	// Role is the account role, "Admin" or "Student".
	Role string `json:"role"`
}
