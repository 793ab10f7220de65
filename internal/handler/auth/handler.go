package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/internal/middleware"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/auth"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
	"github.com/jwalitptl/admin-console/pkg/security"
)

const LoginPath = "/api/auth/login"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RoleID     string `json:"roleId,omitempty"`
	SuperAdmin bool   `json:"superAdmin"`
}

type Handler struct {
	repo   repository.RecordRepository
	jwt    auth.JWTService
	hasher security.PasswordHasher
}

func NewHandler(repo repository.RecordRepository, jwt auth.JWTService, hasher security.PasswordHasher) *Handler {
	return &Handler{repo: repo, jwt: jwt, hasher: hasher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST(LoginPath, h.Login)
}

// Login checks a staff member's password and issues a token scoped to the
// tenant. Unknown emails and wrong passwords get the same answer.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewBadRequest("email and password are required", err))
		return
	}

	tenant := middleware.GetTenant(c)
	invalid := errors.Unauthorized(nil)
	invalid.Message = "invalid credentials"

	doc, err := h.repo.FindBy(c.Request.Context(), tenant, "staff", "email", req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			_ = c.Error(invalid)
			return
		}
		_ = c.Error(err)
		return
	}

	hash, _ := doc["passwordHash"].(string)
	if err := h.hasher.Compare(hash, req.Password); err != nil {
		_ = c.Error(invalid)
		return
	}
	if status, _ := doc["status"].(string); status == "inactive" {
		_ = c.Error(errors.NewForbidden("account is inactive"))
		return
	}

	user := User{ID: doc.ID()}
	user.Name, _ = doc["name"].(string)
	user.Email, _ = doc["email"].(string)
	user.RoleID, _ = doc["roleId"].(string)
	user.SuperAdmin, _ = doc["superAdmin"].(bool)

	token, expires, err := h.jwt.GenerateAccessToken(auth.Subject{
		UserID:     user.ID,
		Tenant:     tenant,
		RoleID:     user.RoleID,
		SuperAdmin: user.SuperAdmin,
		Name:       user.Name,
		Email:      user.Email,
	})
	if err != nil {
		_ = c.Error(errors.NewInternal(err))
		return
	}

	httputil.RespondRecord(c, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires, User: user})
}
