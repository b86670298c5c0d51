package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenManager(accessSecret, refreshSecret string) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// Generate выдает пару access (15 min) + refresh (7 days).
// Роль кладем в access, чтобы не ходить в БД на каждый запрос.
func (m *TokenManager) Generate(userID, role string) (string, string, error) {
	at := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
		"type": "access",
	})
	accessToken, err := at.SignedString(m.accessSecret)
	if err != nil {
		return "", "", err
	}

	rt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"exp":  time.Now().Add(RefreshTTL).Unix(),
		"type": "refresh",
	})
	refreshToken, err := rt.SignedString(m.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken возвращает (userID, role).
func (m *TokenManager) ValidateAccessToken(tokenStr string) (string, string, error) {
	claims, err := m.validate(tokenStr, m.accessSecret)
	if err != nil {
		return "", "", err
	}
	role, _ := claims["role"].(string)
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", "", errors.New("invalid token")
	}
	return sub, role, nil
}

func (m *TokenManager) ValidateRefreshToken(tokenStr string) (string, error) {
	claims, err := m.validate(tokenStr, m.refreshSecret)
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token")
	}
	return sub, nil
}

func (m *TokenManager) validate(tokenStr string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
