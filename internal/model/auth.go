package model

import "time"

// Session is a ledger row for an issued session token. The token itself is
// never stored, only its digest.
type Session struct {
	TokenHash  string
	EmployeeID string
	ExpiresAt  time.Time
	IsValid    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the session may still authenticate requests at now.
func (s Session) Active(now time.Time) bool {
	return s.IsValid && now.Before(s.ExpiresAt)
}

// RefreshToken is a ledger row for an issued refresh token, keyed by digest.
type RefreshToken struct {
	TokenHash  string
	EmployeeID string
	ExpiresAt  time.Time
	Revoked    bool
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

type AuthResponse struct {
	SessionToken string    `json:"sessionToken"`
	Employee     *Employee `json:"employee"`
}

type TokenCleanupResponse struct {
	DeletedSessions      int64 `json:"deletedSessions"`
	DeletedRefreshTokens int64 `json:"deletedRefreshTokens"`
}
