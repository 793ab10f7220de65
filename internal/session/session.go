// Package session holds the signed-in user the console acts as. The session
// is passed explicitly to whatever needs role-gated behavior; a missing or
// unreadable session is anonymous, never an error.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleNone       Role = "none"
	RoleStaff      Role = "staff"
	RoleSuperAdmin Role = "super_admin"
)

type Session struct {
	UserID     string     `json:"userId,omitempty"`
	RoleID     string     `json:"roleId,omitempty"`
	SuperAdmin bool       `json:"superAdmin,omitempty"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Token      string     `json:"token,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Anonymous is the session used when nobody is signed in.
func Anonymous() Session {
	return Session{}
}

func (s Session) IsAnonymous() bool {
	return s.UserID == "" && s.Token == ""
}

func (s Session) Role() Role {
	switch {
	case s.IsAnonymous():
		return RoleNone
	case s.SuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleStaff
	}
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// storedUser accepts the field names older console builds wrote.
type storedUser struct {
	UserID       string     `json:"userId"`
	ID           string     `json:"id"`
	LegacyID     string     `json:"_id"`
	RoleID       string     `json:"roleId"`
	LegacyRoleID string     `json:"role_id"`
	SuperAdmin   bool       `json:"superAdmin"`
	IsSuperAdmin bool       `json:"isSuperAdmin"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Token        string     `json:"token"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// Parse reads a persisted user blob. Absent or malformed input yields an
// anonymous session.
func Parse(blob []byte) Session {
	if len(blob) == 0 {
		return Anonymous()
	}
	var u storedUser
	if err := json.Unmarshal(blob, &u); err != nil {
		return Anonymous()
	}
	return Session{
		UserID:     first(u.UserID, u.ID, u.LegacyID),
		RoleID:     first(u.RoleID, u.LegacyRoleID),
		SuperAdmin: u.SuperAdmin || u.IsSuperAdmin,
		Name:       u.Name,
		Email:      u.Email,
		Token:      u.Token,
		ExpiresAt:  u.ExpiresAt,
	}
}

// Encode is the inverse of Parse.
func (s Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// FromToken builds a session from the claims of a backend-issued JWT. The
// signature is not checked: the backend verifies the token on every request.
func FromToken(token string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Anonymous(), fmt.Errorf("failed to parse token: %w", err)
	}

	s := Session{Token: token}
	s.UserID, _ = claims["sub"].(string)
	s.RoleID, _ = claims["role_id"].(string)
	s.SuperAdmin, _ = claims["super_admin"].(bool)
	s.Name, _ = claims["name"].(string)
	s.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		s.ExpiresAt = &t
	}
	return s, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Holder is the current session shared between the HTTP client and the code
// that signs users in and out. It implements httpclient.TokenSource.
type Holder struct {
	mu sync.RWMutex
	s  Session
}

func NewHolder(s Session) *Holder {
	return &Holder{s: s}
}

func (h *Holder) Get() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s
}

func (h *Holder) Set(s Session) {
	h.mu.Lock()
	h.s = s
	h.mu.Unlock()
}

func (h *Holder) Token() string {
	return h.Get().Token
}
