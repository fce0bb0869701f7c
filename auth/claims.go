package auth

import (
	"fmt"

	shared "uniforum/shared"

	"github.com/golang-jwt/jwt/v5"
)

// userFromToken builds a minimal session from the access token's claims.
// The signature is not checked: the token came from the server and is only
// read here as a last-resort source for id, username and role.
func userFromToken(token string) (*shared.User, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("error decoding access token: %v", err)
	}

	user := &shared.User{
		Id:       claimString(claims, "user_id"),
		Username: claimString(claims, "username"),
		Name:     claimString(claims, "name"),
		Role:     shared.ParseRole(claimString(claims, "role")),
	}
	if user.Id == "" {
		user.Id = claimString(claims, "sub")
	}
	if user.Id == "" {
		return nil, fmt.Errorf("access token has no user id claim")
	}
	return user, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	}
	return fmt.Sprint(v)
}
