package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"shiftness-api/internal/constants"
	"shiftness-api/internal/models"
	"shiftness-api/internal/sharecode"
	"shiftness-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateBusiness godoc
// @Summary Create a business
// @Description Create a new business owned by the calling admin
// @Tags businesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param business body api.CreateBusinessRequest true "Business details"
// @Success 201 {object} object{message=string,business=object{id=int,name=string,description=string,created_by=int,created_at=string}}
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /create_business [post]
func (h *Handler) CreateBusiness(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Business name is required"})
		return
	}

	name := strings.TrimSpace(request.Name)
	description := strings.TrimSpace(request.Description)

	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Business name is required"})
		return
	}
	if len(name) > constants.MaxBusinessName {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Business name is too long"})
		return
	}

	result, err := h.db.Exec(`
        INSERT INTO businesses (name, description, created_by)
        VALUES (?, ?, ?)`,
		name, description, userID)
	if err != nil {
		h.log.Error("create_business: insert failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business. Please try again later."})
		return
	}

	businessID, err := result.LastInsertId()
	if err != nil {
		h.log.Error("create_business: no insert id", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business. Please try again later."})
		return
	}

	var business models.Business
	err = h.db.QueryRow(`
        SELECT id, name, description, created_by, created_at
        FROM businesses
        WHERE id = ?`, businessID).Scan(
		&business.ID,
		&business.Name,
		&business.Description,
		&business.CreatedBy,
		&business.CreatedAt,
	)
	if err != nil {
		h.log.Error("create_business: failed to fetch business", zap.Int64("business_id", businessID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Business created successfully",
		"business": business,
	})
}

// GetBusinesses godoc
// @Summary List businesses
// @Description Admins get businesses they created with member counts; members get businesses they belong to
// @Tags businesses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{businesses=[]object{id=int,name=string,description=string,created_at=string}}
// @Failure 401 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /get_businesses [get]
func (h *Handler) GetBusinesses(c *gin.Context) {
	userID := c.GetInt64("user_id")
	isAdmin := c.GetString("role") == models.RoleAdmin

	if isAdmin {
		h.listOwnedBusinesses(c, userID)
		return
	}
	h.listJoinedBusinesses(c, userID)
}

// listOwnedBusinesses returns businesses the admin created, newest first,
// each with a distinct member count.
func (h *Handler) listOwnedBusinesses(c *gin.Context, userID int64) {
	rows, err := h.db.Query(`
        SELECT b.id, b.name, b.description, b.created_at,
               COUNT(DISTINCT bu.user_id) AS user_count
        FROM businesses b
        LEFT JOIN business_users bu ON b.id = bu.business_id
        WHERE b.created_by = ?
        GROUP BY b.id, b.name, b.description, b.created_at
        ORDER BY b.created_at DESC`, userID)
	if err != nil {
		h.log.Error("get_businesses: owned query failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses. Please try again later."})
		return
	}
	defer rows.Close()

	businesses := []models.OwnedBusiness{}
	for rows.Next() {
		var b models.OwnedBusiness
		var description sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &description, &b.CreatedAt, &b.UserCount); err != nil {
			h.log.Error("get_businesses: owned scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses. Please try again later."})
			return
		}
		b.Description = description.String
		businesses = append(businesses, b)
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// listJoinedBusinesses returns businesses the user was added to, most
// recently joined first, each with the creator's email.
func (h *Handler) listJoinedBusinesses(c *gin.Context, userID int64) {
	rows, err := h.db.Query(`
        SELECT b.id, b.name, b.description, b.created_at,
               u.email AS created_by_email, bu.added_at
        FROM businesses b
        INNER JOIN business_users bu ON b.id = bu.business_id
        LEFT JOIN users u ON b.created_by = u.id
        WHERE bu.user_id = ?
        ORDER BY bu.added_at DESC`, userID)
	if err != nil {
		h.log.Error("get_businesses: joined query failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses. Please try again later."})
		return
	}
	defer rows.Close()

	businesses := []models.JoinedBusiness{}
	for rows.Next() {
		var b models.JoinedBusiness
		var description, creatorEmail sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &description, &b.CreatedAt, &creatorEmail, &b.AddedAt); err != nil {
			h.log.Error("get_businesses: joined scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses. Please try again later."})
			return
		}
		b.Description = description.String
		b.CreatedByEmail = creatorEmail.String
		businesses = append(businesses, b)
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// AddUserToBusiness godoc
// @Summary Add a user to a business by share code
// @Description Resolve a user by share code and add them to a business the calling admin owns
// @Tags businesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body api.AddUserToBusinessRequest true "Business id and share code"
// @Success 201 {object} object{message=string,user=object{id=int,email=string},business=object{id=int,name=string}}
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /add_user_to_business [post]
func (h *Handler) AddUserToBusiness(c *gin.Context) {
	adminID := c.GetInt64("user_id")

	var request struct {
		BusinessID int64  `json:"business_id" binding:"required"`
		ShareCode  string `json:"share_code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Business ID and share code are required"})
		return
	}

	code := sharecode.Normalize(request.ShareCode)
	if !sharecode.Valid(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid share code format"})
		return
	}

	// Ownership check doubles as the existence check: a non-owner gets the
	// same answer as a nonexistent id, so business ids can't be probed.
	var businessID int64
	var businessName string
	err := h.db.QueryRow(`
        SELECT id, name FROM businesses
        WHERE id = ? AND created_by = ?`,
		request.BusinessID, adminID).Scan(&businessID, &businessName)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found or you do not have permission"})
		return
	} else if err != nil {
		h.log.Error("add_user_to_business: business lookup failed", zap.Int64("business_id", request.BusinessID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to business. Please try again later."})
		return
	}

	var targetID int64
	var targetEmail string
	err = h.db.QueryRow("SELECT id, email FROM users WHERE share_code = ?", code).Scan(&targetID, &targetEmail)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found with this share code"})
		return
	} else if err != nil {
		h.log.Error("add_user_to_business: user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to business. Please try again later."})
		return
	}

	var membershipID int64
	err = h.db.QueryRow(`
        SELECT id FROM business_users
        WHERE business_id = ? AND user_id = ?`,
		businessID, targetID).Scan(&membershipID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already added to this business"})
		return
	} else if err != sql.ErrNoRows {
		h.log.Error("add_user_to_business: membership lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to business. Please try again later."})
		return
	}

	// The check above races a concurrent identical request; the unique key
	// on (business_id, user_id) is the authoritative guard.
	_, err = h.db.Exec(`
        INSERT INTO business_users (business_id, user_id, added_by)
        VALUES (?, ?, ?)`,
		businessID, targetID, adminID)
	if storage.IsDuplicateEntry(err, "uniq_business_user") {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already added to this business"})
		return
	} else if err != nil {
		h.log.Error("add_user_to_business: insert failed",
			zap.Int64("business_id", businessID), zap.Int64("user_id", targetID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to business. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User added to business successfully",
		"user": gin.H{
			"id":    targetID,
			"email": targetEmail,
		},
		"business": gin.H{
			"id":   businessID,
			"name": businessName,
		},
	})
}
