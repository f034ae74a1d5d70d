package handlers

import (
	"database/sql"
	"errors"
	"time"

	"shiftness-api/internal/constants"
	"shiftness-api/internal/sharecode"
	"shiftness-api/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	db  *sql.DB
	log *zap.Logger
}

func NewHandler(db *sql.DB, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

// errEmailTaken distinguishes an email collision from a share-code
// collision at insert time: only the latter is retried.
var errEmailTaken = errors.New("email already registered")

func (h *Handler) shareCodeExists(code string) (bool, error) {
	var id int64
	err := h.db.QueryRow("SELECT id FROM users WHERE share_code = ? LIMIT 1", code).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// insertUser is the single write path for new users: it hashes the
// password, assigns a fresh share code and inserts the row. The uniqueness
// check and the insert can race a concurrent signup for the same code, so
// the unique key on share_code is the authoritative guard; when it fires,
// a new code is drawn and the insert retried a bounded number of times.
func (h *Handler) insertUser(username, email, password string) (int64, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	var name sql.NullString
	if username != "" {
		name = sql.NullString{String: username, Valid: true}
	}

	var lastErr error
	for attempt := 0; attempt < constants.ShareCodeInsertRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(constants.ShareCodeRetryBackoff)
		}

		code, err := sharecode.Generate(h.shareCodeExists)
		if err != nil {
			return 0, err
		}

		result, err := h.db.Exec(`
            INSERT INTO users (username, email, password, share_code)
            VALUES (?, ?, ?, ?)`,
			name, email, string(hashed), code)
		if err == nil {
			return result.LastInsertId()
		}

		if storage.IsDuplicateEntry(err, "uniq_email") {
			return 0, errEmailTaken
		}
		if storage.IsDuplicateEntry(err, "uniq_share_code") {
			// Lost the race on the code; draw a new one
			lastErr = err
			continue
		}
		return 0, err
	}
	return 0, lastErr
}
