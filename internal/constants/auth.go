package constants

import "time"

const (
	// Token lifetime. Tokens are stateless and stay valid until expiry.
	TokenTTL = 7 * 24 * time.Hour

	// Share code format
	ShareCodeLength   = 6
	ShareCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Generation bounds
	ShareCodeMaxAttempts   = 100 // draws against the uniqueness check
	ShareCodeInsertRetries = 3   // re-inserts after a share_code collision at commit
	ShareCodeRetryBackoff  = 100 * time.Millisecond

	MinPasswordLength = 6
	MaxBusinessName   = 255
)
