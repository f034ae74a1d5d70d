package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"shiftness-api/internal/auth"
	"shiftness-api/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "test-secret"}})
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"email":   c.GetString("email"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	authTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareBadScheme(t *testing.T) {
	for _, header := range []string{"Basic abc123", "Bearer", "Bearer ", "token abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		authTestRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	authTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareCaseInsensitiveScheme(t *testing.T) {
	token, err := auth.GenerateToken(12, "user@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", scheme+" "+token)
		authTestRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("scheme %q: status = %d, want 200", scheme, w.Code)
		}
	}
}

func TestAdminMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		noRow    bool
		wantCode int
	}{
		{name: "admin allowed", role: "admin", wantCode: http.StatusOK},
		{name: "plain user forbidden", role: "user", wantCode: http.StatusForbidden},
		{name: "deleted user unauthenticated", noRow: true, wantCode: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			query := mock.ExpectQuery("SELECT role FROM users WHERE id")
			if tc.noRow {
				query.WillReturnError(sql.ErrNoRows)
			} else {
				query.WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(tc.role))
			}

			r := gin.New()
			r.GET("/admin", func(c *gin.Context) { c.Set("user_id", int64(3)) }, AdminMiddleware(db), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}
