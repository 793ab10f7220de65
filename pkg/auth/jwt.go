package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingKey   = errors.New("jwt secret is not configured")
)

// Claims are the fields the console reads back out of a token; the names
// match what the session package expects.
type Claims struct {
	jwt.RegisteredClaims
	Tenant     string `json:"tenant"`
	RoleID     string `json:"role_id,omitempty"`
	SuperAdmin bool   `json:"super_admin"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Subject identifies the staff member a token is issued for.
type Subject struct {
	UserID     string
	Tenant     string
	RoleID     string
	SuperAdmin bool
	Name       string
	Email      string
}

type JWTService interface {
	GenerateAccessToken(sub Subject) (string, time.Time, error)
	ValidateToken(token string) (*Claims, error)
}

type hmacService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTService signs HS256 tokens valid for expiry.
func NewJWTService(secret string, expiry time.Duration) JWTService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &hmacService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "admin-console",
		now:    time.Now,
	}
}

func (s *hmacService) GenerateAccessToken(sub Subject) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrMissingKey
	}

	now := s.now()
	expires := now.Add(s.expiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   sub.UserID,
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Tenant:     sub.Tenant,
		RoleID:     sub.RoleID,
		SuperAdmin: sub.SuperAdmin,
		Name:       sub.Name,
		Email:      sub.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

func (s *hmacService) ValidateToken(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingKey
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
