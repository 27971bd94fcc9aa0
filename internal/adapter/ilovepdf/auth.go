package ilovepdf

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTTL = 2 * time.Hour
	// Токен перевыпускается заранее, чтобы не истечь посреди задачи
	tokenRefreshMargin = 5 * time.Minute
)

// tokenSource выпускает самоподписанные HS256 токены из ключей проекта
type tokenSource struct {
	publicKey string
	secretKey []byte
	now       func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(publicKey, secretKey string) *tokenSource {
	return &tokenSource{
		publicKey: publicKey,
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// Token возвращает действующий токен, при необходимости выпускает новый
func (s *tokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(tokenRefreshMargin).Before(s.expiresAt) {
		return s.token, nil
	}

	if s.publicKey == "" || len(s.secretKey) == 0 {
		return "", errors.New("ilovepdf keys not configured")
	}

	expiresAt := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"iss": "fileconverter",
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": s.publicKey,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.token = signed
	s.expiresAt = expiresAt
	return signed, nil
}
