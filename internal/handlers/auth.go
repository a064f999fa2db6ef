package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/middleware"
	"github.com/P3chys/exchange-api/internal/models"
	"github.com/P3chys/exchange-api/internal/services"
	"github.com/P3chys/exchange-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/golang-jwt/jwt/v5"
)

type UserAccounts interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	DisplayName    string `json:"display_name"`
	OrganizationID int    `json:"organization_id"`
}

type CreateUserRequest struct {
	RegisterRequest
	RoleID models.Role `json:"role_id" binding:"required,oneof=1 2 3"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Register creates a student account and signs it in.
func Register(users UserAccounts, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		user, ok := createUser(c, users, req, models.RoleStudent)
		if !ok {
			return
		}

		accessToken, err := generateToken(user.ID, user.RoleID, cfg.JWTSecret, cfg.JWTAccessExpiry)
		if err != nil {
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
			return
		}

		respondData(c, http.StatusCreated, AuthResponse{User: user, AccessToken: accessToken})
	}
}

// CreateUser lets an administrator create accounts of any role.
func CreateUser(users UserAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		user, ok := createUser(c, users, req.RegisterRequest, req.RoleID)
		if !ok {
			return
		}

		respondData(c, http.StatusCreated, user)
	}
}

func createUser(c *gin.Context, users UserAccounts, req RegisterRequest, role models.Role) (*models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := users.EmailTaken(c.Request.Context(), email)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check email")
		return nil, false
	}
	if taken {
		respondError(c, http.StatusConflict, "CONFLICT", "Email already exists")
		return nil, false
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password")
		return nil, false
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hashedPassword,
		DisplayName:    req.DisplayName,
		RoleID:         role,
		OrganizationID: req.OrganizationID,
	}
	if err := users.Create(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return nil, false
	}
	return user, true
}

// Login reads the body with ShouldBindBodyWith because the email rate limiter
// consumes it first.
func Login(users UserAccounts, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			respondBindError(c, err)
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				_ = c.Error(err)
			}
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}

		if !utils.CheckPassword(user.PasswordHash, req.Password) {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}

		accessToken, err := generateToken(user.ID, user.RoleID, cfg.JWTSecret, cfg.JWTAccessExpiry)
		if err != nil {
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
			return
		}

		respondData(c, http.StatusOK, AuthResponse{User: user, AccessToken: accessToken})
	}
}

func GetCurrentUser(users UserAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(middleware.CurrentUserID(c))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user id claim")
			return
		}

		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
				return
			}
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
			return
		}

		respondData(c, http.StatusOK, user)
	}
}

func generateToken(userID int, role models.Role, secret string, expiry string) (string, error) {
	duration, err := time.ParseDuration(expiry)
	if err != nil {
		duration = time.Hour
	}

	claims := jwt.MapClaims{
		"user_id": strconv.Itoa(userID),
		"role":    int(role),
		"exp":     time.Now().Add(duration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
