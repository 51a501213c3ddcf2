package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/constructhq/defect-tracker/internal/apperrors"
	"github.com/constructhq/defect-tracker/internal/auth"
	"github.com/constructhq/defect-tracker/internal/database"
	"github.com/constructhq/defect-tracker/internal/models"
	pkgauth "github.com/constructhq/defect-tracker/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *pkgauth.JWTManager
}

func NewAuthHandler(db *database.Database, jwtManager *pkgauth.JWTManager) *AuthHandler {
	return &AuthHandler{
		db:         db,
		jwtManager: jwtManager,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// selfRegisterRoles are the roles a caller may pick when registering.
// Privileged accounts are provisioned out of band (cmd/seed or an admin).
var selfRegisterRoles = []models.UserRole{models.UserRoleUser, models.UserRoleObserver}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.UserRoleUser
	if req.Role != "" {
		role = models.UserRole(req.Role)
		if !role.Valid() {
			respondError(c, apperrors.Validation("unknown role"))
			return
		}
		allowed := false
		for _, r := range selfRegisterRoles {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			respondError(c, apperrors.ErrForbidden)
			return
		}
	}

	hashedPassword, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: hashedPassword,
		Role:     role,
	}
	if err := h.db.CreateUser(user); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := pkgauth.CheckPassword(req.Password, user.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": auth.CurrentUser(c)})
}
