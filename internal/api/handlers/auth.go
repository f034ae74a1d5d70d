package handlers

import (
	"database/sql"
	"net/http"
	"net/mail"
	"strings"

	"shiftness-api/internal/auth"
	"shiftness-api/internal/constants"
	"shiftness-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Signup godoc
// @Summary Register a new user
// @Description Register a new user with email and password; a unique share code is assigned
// @Tags auth
// @Accept json
// @Produce json
// @Param user body api.SignupRequest true "User registration details"
// @Success 201 {object} object{message=string,token=string,user=api.UserResponse}
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	email := strings.TrimSpace(request.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	if len(request.Password) < constants.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	userID, err := h.insertUser("", email, request.Password)
	if err == errEmailTaken {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if err != nil {
		h.log.Error("signup: failed to create user", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again later."})
		return
	}

	var user models.User
	err = h.db.QueryRow(`
        SELECT id, email, role, share_code, created_at
        FROM users
        WHERE id = ?`, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.ShareCode,
		&user.CreatedAt,
	)
	if err != nil {
		h.log.Error("signup: failed to fetch user details", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again later."})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		h.log.Error("signup: failed to generate token", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"role":       user.Role,
			"share_code": user.ShareCode,
			"created_at": user.CreatedAt,
		},
	})
}

// Signin godoc
// @Summary Sign in
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body api.SigninRequest true "Login credentials"
// @Success 200 {object} object{message=string,token=string,user=api.UserResponse}
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	email := strings.TrimSpace(credentials.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	var user models.User
	var storedHash string
	var shareCode sql.NullString
	err := h.db.QueryRow(`
        SELECT id, email, password, role, share_code, created_at
        FROM users
        WHERE email = ?`, email).Scan(
		&user.ID,
		&user.Email,
		&storedHash,
		&user.Role,
		&shareCode,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	} else if err != nil {
		h.log.Error("signin: failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign in failed. Please try again later."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(credentials.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		h.log.Error("signin: failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign in successful",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"role":       user.Role,
			"share_code": shareCode.String,
			"created_at": user.CreatedAt,
		},
	})
}

// VerifyToken godoc
// @Summary Verify token
// @Description Validate the bearer token and return the current user record
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,user=api.UserResponse}
// @Failure 401 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /verify_token [post]
func (h *Handler) VerifyToken(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var user models.User
	err := h.db.QueryRow(`
        SELECT id, email, role, created_at
        FROM users
        WHERE id = ?`, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		h.log.Error("verify_token: failed to fetch user", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token is valid",
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		},
	})
}

// Signout godoc
// @Summary Sign out
// @Description Tokens are stateless; the client discards the token. This endpoint exists for consistency.
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /signout [post]
func (h *Handler) Signout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}
