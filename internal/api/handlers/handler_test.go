package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"shiftness-api/internal/auth"
	"shiftness-api/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "test-secret"}})
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHandler(db, zap.NewNop()), mock
}

// identity injects the caller the auth middleware would have set.
func identity(userID int64, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("email", email)
		c.Set("role", role)
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// duplicateKeyErr fabricates the driver error MySQL raises for a unique key
// violation, message shaped like the server's "Duplicate entry ... for key".
func duplicateKeyErr(key string) *mysql.MySQLError {
	return &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'x' for key '" + key + "'",
	}
}
