package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Sessions signs and checks the tokens that tie a browser to its cart.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: SessionTTL, now: time.Now}
}

// NewSession creates a fresh session id and its signed token.
func (s *Sessions) NewSession() (id, token string, err error) {
	id = uuid.NewString()
	token, err = s.GenerateToken(id)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// GenerateToken creates a signed token whose subject is the session id.
func (s *Sessions) GenerateToken(sessionID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses tokenString and returns the session id it carries.
func (s *Sessions) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("invalid subject claim")
	}
	if _, err := uuid.Parse(sub); err != nil {
		return "", errors.New("invalid subject claim")
	}
	return sub, nil
}
