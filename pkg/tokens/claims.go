package tokens

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
