package devserver

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	shared "uniforum/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

func randomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("error generating signing key: %v", err)
	}
	return key, nil
}

func (s *Server) issueToken(user *shared.User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"user_id":    user.Id,
		"username":   user.Username,
		"name":       user.Name,
		"role":       string(user.Role),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Server) issuePair(user *shared.User) (string, string, error) {
	access, err := s.issueToken(user, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.issueToken(user, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// parseToken verifies signature, expiry and token type, returning the user
// id the token was issued to.
func (s *Server) parseToken(raw, tokenType string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims")
	}
	if typ, _ := claims["token_type"].(string); typ != tokenType {
		return "", fmt.Errorf("wrong token type %q", typ)
	}
	userId, _ := claims["user_id"].(string)
	if userId == "" {
		return "", fmt.Errorf("token has no user")
	}
	return userId, nil
}

func encodeUid(userId string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userId))
}

func decodeUid(uidb64 string) string {
	bytes, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return ""
	}
	return string(bytes)
}
