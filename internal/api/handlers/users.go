package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shiftness-api/internal/models"
	"shiftness-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Columns the directory listing may sort by. Anything else silently falls
// back to id.
var userSortColumns = map[string]bool{
	"id":         true,
	"username":   true,
	"email":      true,
	"created_at": true,
	"updated_at": true,
}

// ListUsers godoc
// @Summary List users
// @Description List users with optional sorting and pagination
// @Tags users
// @Produce json
// @Param sortBy query string false "Sort column (id, username, email, created_at, updated_at)"
// @Param sortOrder query string false "ASC or DESC"
// @Param limit query int false "Page size (requires offset)"
// @Param offset query int false "Page offset (requires limit)"
// @Success 200 {object} object{data=[]api.UserResponse,count=int}
// @Failure 400 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	sortBy := c.DefaultQuery("sortBy", "id")
	if !userSortColumns[sortBy] {
		sortBy = "id"
	}

	sortOrder := "ASC"
	if strings.EqualFold(c.Query("sortOrder"), "DESC") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`
        SELECT id, username, email, role, share_code, created_at, updated_at
        FROM users
        ORDER BY %s %s`, sortBy, sortOrder)

	var args []interface{}
	limitStr, offsetStr := c.Query("limit"), c.Query("offset")
	if limitStr != "" && offsetStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		h.log.Error("list users: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var username, shareCode sql.NullString
		err := rows.Scan(&user.ID, &username, &user.Email, &user.Role,
			&shareCode, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			h.log.Error("list users: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		user.Username = username.String
		user.ShareCode = shareCode.String
		users = append(users, user)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  users,
		"count": len(users),
	})
}

// CreateUser godoc
// @Summary Create a user
// @Description Create a user record; password is hashed before storage
// @Tags users
// @Accept json
// @Produce json
// @Param user body object{username=string,email=string,password=string} true "User details"
// @Success 201 {object} object{message=string,user_id=int}
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password are required"})
		return
	}

	userID, err := h.insertUser(request.Username, strings.TrimSpace(request.Email), request.Password)
	if err == errEmailTaken {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if err != nil {
		h.log.Error("create user: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": userID,
	})
}

// GetUser godoc
// @Summary Get a user
// @Description Fetch a single user by id
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} object{data=api.UserResponse}
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var user models.User
	var username, shareCode sql.NullString
	err = h.db.QueryRow(`
        SELECT id, username, email, role, share_code, created_at, updated_at
        FROM users
        WHERE id = ?`, id).Scan(
		&user.ID,
		&username,
		&user.Email,
		&user.Role,
		&shareCode,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		h.log.Error("get user: query failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	user.Username = username.String
	user.ShareCode = shareCode.String

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// UpdateUser godoc
// @Summary Update a user
// @Description Apply recognized fields (username, email, password); password is re-hashed
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param user body object{username=string,email=string,password=string} true "Fields to update"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var request struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var updates []string
	var args []interface{}
	if request.Username != nil {
		updates = append(updates, "username = ?")
		args = append(args, *request.Username)
	}
	if request.Email != nil {
		updates = append(updates, "email = ?")
		args = append(args, strings.TrimSpace(*request.Email))
	}
	if request.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
		if err != nil {
			h.log.Error("update user: hash failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		updates = append(updates, "password = ?")
		args = append(args, string(hashed))
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	updates = append(updates, "updated_at = NOW()")
	query := "UPDATE users SET " + strings.Join(updates, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := h.db.Exec(query, args...)
	if storage.IsDuplicateEntry(err, "uniq_email") {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if err != nil {
		h.log.Error("update user: exec failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Hard-delete a user by id
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	result, err := h.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		h.log.Error("delete user: exec failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
