package security

import (
	"context"
	"ems_backend/internal/common"
	"ems_backend/internal/platform/config"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose namespaces signed tokens so a link-click approval token cannot
// be replayed as a login session and vice versa.
type TokenPurpose string

const (
	PurposeSession  TokenPurpose = "session"
	PurposeApproval TokenPurpose = "approval"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateSessionToken issues the bearer token returned at login. The role
// claim is carried so route middleware can gate admin-only endpoints without a
// store round-trip.
func GenerateSessionToken(userID, role string) (string, error) {
	return generate(userID, role, PurposeSession, config.AppConfig.JWTExp)
}

// GenerateApprovalToken issues the short-lived token embedded in the review
// link mailed to a station admin.
func GenerateApprovalToken(userID string) (string, error) {
	return generate(userID, "", PurposeApproval, config.AppConfig.JWTExp)
}

func generate(userID, role string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": string(purpose),
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// VerifyToken checks signature, expiry and purpose, returning the subject
// user id. A valid token of the wrong purpose is rejected.
func VerifyToken(tokenString string, purpose TokenPurpose) (string, error) {
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		return "", common.ErrInvalidToken
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if p, ok := claims["purpose"].(string); !ok || p != string(purpose) {
		return "", common.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", common.Errorf("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", common.Errorf("role claim is missing or not a string")
	}
	return role, nil
}

func GetPurposeFromClaims(claims map[string]interface{}) (TokenPurpose, error) {
	purpose, ok := claims["purpose"].(string)
	if !ok {
		return "", common.Errorf("purpose claim is missing or not a string")
	}
	return TokenPurpose(purpose), nil
}
