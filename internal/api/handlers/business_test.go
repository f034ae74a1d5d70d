package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func businessRouter(h *Handler, userID int64, role string) *gin.Engine {
	r := gin.New()
	inject := identity(userID, "admin@example.com", role)
	r.POST("/create_business", inject, h.CreateBusiness)
	r.GET("/get_businesses", inject, h.GetBusinesses)
	r.POST("/add_user_to_business", inject, h.AddUserToBusiness)
	return r
}

func TestCreateBusinessValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	r := businessRouter(h, 1, "admin")

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"description": "x"}},
		{"blank name", gin.H{"name": "   "}},
		{"name too long", gin.H{"name": strings.Repeat("a", 256)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/create_business", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateBusinessSuccess(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO businesses").
		WithArgs("Acme", "", int64(1)).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT id, name, description, created_by, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_by", "created_at"}).
			AddRow(9, "Acme", "", 1, time.Now()))

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/create_business", gin.H{
		"name":        "  Acme  ",
		"description": "",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	business := body["business"].(map[string]interface{})
	assert.Equal(t, float64(9), business["id"])
	assert.Equal(t, "Acme", business["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBusinessesAsAdmin(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`COUNT\(DISTINCT bu.user_id\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "user_count"}).
			AddRow(2, "Newest", "second", time.Now(), 3).
			AddRow(1, "Oldest", nil, time.Now().Add(-time.Hour), 0))

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodGet, "/get_businesses", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	businesses := body["businesses"].([]interface{})
	assert.Len(t, businesses, 2)

	first := businesses[0].(map[string]interface{})
	assert.Equal(t, "Newest", first["name"])
	assert.Equal(t, float64(3), first["user_count"])
}

func TestGetBusinessesAsMember(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("created_by_email").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "created_by_email", "added_at"}).
			AddRow(7, "Acme", "night crew", time.Now(), "owner@example.com", time.Now()))

	w := doJSON(t, businessRouter(h, 4, "user"), http.MethodGet, "/get_businesses", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	businesses := body["businesses"].([]interface{})
	assert.Len(t, businesses, 1)

	row := businesses[0].(map[string]interface{})
	assert.Equal(t, "owner@example.com", row["created_by_email"])
	assert.NotEmpty(t, row["added_at"])
}

func TestGetBusinessesEmptyList(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("created_by_email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "created_by_email", "added_at"}))

	w := doJSON(t, businessRouter(h, 4, "user"), http.MethodGet, "/get_businesses", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"businesses":[]`)
}

func TestAddUserToBusinessBadShareCode(t *testing.T) {
	h, _ := newTestHandler(t)
	r := businessRouter(h, 1, "admin")

	for _, code := range []string{"", "7K2M9", "7K2M9XX", "7K2M!X"} {
		w := doJSON(t, r, http.MethodPost, "/add_user_to_business", gin.H{
			"business_id": 3,
			"share_code":  code,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "code %q", code)
	}
}

func TestAddUserToBusinessNotOwner(t *testing.T) {
	h, mock := newTestHandler(t)

	// Nonexistent business and not-owned business look identical
	mock.ExpectQuery("SELECT id, name FROM businesses").
		WithArgs(int64(3), int64(1)).
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/add_user_to_business", gin.H{
		"business_id": 3,
		"share_code":  "7K2M9X",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found or you do not have permission")
}

func TestAddUserToBusinessUnknownShareCode(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, name FROM businesses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Acme"))
	mock.ExpectQuery("SELECT id, email FROM users WHERE share_code").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/add_user_to_business", gin.H{
		"business_id": 3,
		"share_code":  "7K2M9X",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddUserToBusinessNormalizesCode(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, name FROM businesses").
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Acme"))
	// The lowercase input must reach the database uppercased
	mock.ExpectQuery("SELECT id, email FROM users WHERE share_code").
		WithArgs("7K2M9X").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(8, "member@example.com"))
	mock.ExpectQuery("SELECT id FROM business_users").
		WithArgs(int64(3), int64(8)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO business_users").
		WithArgs(int64(3), int64(8), int64(1)).
		WillReturnResult(sqlmock.NewResult(11, 1))

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/add_user_to_business", gin.H{
		"business_id": 3,
		"share_code":  " 7k2m9x ",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "member@example.com", user["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUserToBusinessAlreadyMember(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, name FROM businesses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Acme"))
	mock.ExpectQuery("SELECT id, email FROM users WHERE share_code").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(8, "member@example.com"))
	mock.ExpectQuery("SELECT id FROM business_users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/add_user_to_business", gin.H{
		"business_id": 3,
		"share_code":  "7K2M9X",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddUserToBusinessInsertRace(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, name FROM businesses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Acme"))
	mock.ExpectQuery("SELECT id, email FROM users WHERE share_code").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(8, "member@example.com"))
	mock.ExpectQuery("SELECT id FROM business_users").
		WillReturnError(sql.ErrNoRows)
	// Concurrent identical request slipped in between check and insert;
	// the unique key fires and must map to the same Conflict outcome
	mock.ExpectExec("INSERT INTO business_users").
		WillReturnError(duplicateKeyErr("business_users.uniq_business_user"))

	w := doJSON(t, businessRouter(h, 1, "admin"), http.MethodPost, "/add_user_to_business", gin.H{
		"business_id": 3,
		"share_code":  "7K2M9X",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}
