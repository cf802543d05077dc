package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/metrics"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/token"
	"github.com/rs/zerolog"
)

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrRefreshExpired = errors.New("refresh token expired")
	ErrRefreshInvalid = errors.New("refresh token invalid")
	ErrRefreshReused  = errors.New("refresh token already used")
)

// Ledger persists issued sessions and refresh tokens. Every token argument is
// a digest produced by hashToken.
type Ledger interface {
	CreatePair(ctx context.Context, session model.Session, refresh model.RefreshToken) error
	RotatePair(ctx context.Context, oldHash, employeeID string, at time.Time, session model.Session, refresh model.RefreshToken) error
	InvalidateSession(ctx context.Context, tokenHash string, at time.Time) error
	RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	GetRefreshToken(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// Codec signs and verifies both token kinds.
type Codec interface {
	Sign(employeeID string, kind token.Kind) (string, time.Time, error)
	Verify(raw string, kind token.Kind) (token.Claims, error)
}

type TokenPair struct {
	SessionToken     string
	SessionExpiresAt time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type LookupResult struct {
	Session      *model.Session
	RefreshToken *model.RefreshToken
}

type CleanupResult struct {
	Sessions      int64
	RefreshTokens int64
}

type TokenService struct {
	ledger           Ledger
	codec            Codec
	log              zerolog.Logger
	now              func() time.Time
	sessionRetention time.Duration
	refreshRetention time.Duration
}

func NewTokenService(ledger Ledger, codec Codec, cfg config.CleanupConfig, log zerolog.Logger) *TokenService {
	return NewTokenServiceWithClock(ledger, codec, cfg, log, time.Now)
}

func NewTokenServiceWithClock(ledger Ledger, codec Codec, cfg config.CleanupConfig, log zerolog.Logger, now func() time.Time) *TokenService {
	return &TokenService{
		ledger:           ledger,
		codec:            codec,
		log:              log.With().Str("component", "tokens").Logger(),
		now:              now,
		sessionRetention: cfg.SessionRetention,
		refreshRetention: cfg.RefreshRetention,
	}
}

// Issue mints a session/refresh pair and stores both rows atomically.
func (s *TokenService) Issue(ctx context.Context, employeeID string) (TokenPair, error) {
	pair, session, refresh, err := s.mint(employeeID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.ledger.CreatePair(ctx, session, refresh); err != nil {
		return TokenPair{}, fmt.Errorf("store token pair: %w", err)
	}
	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. A refresh token can be
// consumed at most once; a replay returns ErrRefreshReused.
func (s *TokenService) Rotate(ctx context.Context, oldRefresh string) (TokenPair, error) {
	claims, err := s.codec.Verify(oldRefresh, token.KindRefresh)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			metrics.TokenRotations.WithLabelValues("expired").Inc()
			return TokenPair{}, ErrRefreshExpired
		}
		metrics.TokenRotations.WithLabelValues("invalid").Inc()
		return TokenPair{}, fmt.Errorf("%w: %v", ErrRefreshInvalid, err)
	}

	pair, session, refresh, err := s.mint(claims.EmployeeID)
	if err != nil {
		metrics.TokenRotations.WithLabelValues("error").Inc()
		return TokenPair{}, err
	}

	if err := s.ledger.RotatePair(ctx, hashToken(oldRefresh), claims.EmployeeID, s.now(), session, refresh); err != nil {
		if errors.Is(err, db.ErrRefreshConsumed) {
			metrics.TokenRotations.WithLabelValues("reused").Inc()
			s.log.Warn().Str("employee_id", claims.EmployeeID).Msg("refresh token replayed")
			return TokenPair{}, ErrRefreshReused
		}
		metrics.TokenRotations.WithLabelValues("error").Inc()
		return TokenPair{}, fmt.Errorf("rotate token pair: %w", err)
	}

	metrics.TokenRotations.WithLabelValues("ok").Inc()
	return pair, nil
}

// Revoke invalidates whichever tokens are present. Store failures are logged
// and never returned.
func (s *TokenService) Revoke(ctx context.Context, sessionToken, refreshToken string) {
	now := s.now()
	if strings.TrimSpace(sessionToken) != "" {
		if err := s.ledger.InvalidateSession(ctx, hashToken(sessionToken), now); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate session")
		}
	}
	if strings.TrimSpace(refreshToken) != "" {
		if err := s.ledger.RevokeRefreshToken(ctx, hashToken(refreshToken), now); err != nil {
			s.log.Warn().Err(err).Msg("failed to revoke refresh token")
		}
	}
}

// Lookup returns the ledger rows for the given tokens; a missing token or row
// leaves the corresponding field nil.
func (s *TokenService) Lookup(ctx context.Context, sessionToken, refreshToken string) (LookupResult, error) {
	var result LookupResult
	if sessionToken != "" {
		session, err := s.ledger.GetSession(ctx, hashToken(sessionToken))
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return LookupResult{}, err
		}
		result.Session = session
	}
	if refreshToken != "" {
		refresh, err := s.ledger.GetRefreshToken(ctx, hashToken(refreshToken))
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return LookupResult{}, err
		}
		result.RefreshToken = refresh
	}
	return result, nil
}

// VerifySession returns the employee id of an active session token.
func (s *TokenService) VerifySession(ctx context.Context, raw string) (string, error) {
	claims, err := s.codec.Verify(raw, token.KindSession)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	lookup, err := s.Lookup(ctx, raw, "")
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if lookup.Session == nil || !lookup.Session.Active(s.now()) || lookup.Session.EmployeeID != claims.EmployeeID {
		return "", ErrSessionInvalid
	}
	return claims.EmployeeID, nil
}

// Cleanup deletes ledger rows that expired or were invalidated before their
// retention window.
func (s *TokenService) Cleanup(ctx context.Context) (CleanupResult, error) {
	now := s.now()

	sessions, err := s.ledger.DeleteStaleSessions(ctx, now.Add(-s.sessionRetention))
	if err != nil {
		return CleanupResult{}, err
	}
	metrics.CleanupDeleted.WithLabelValues("sessions").Add(float64(sessions))

	refresh, err := s.ledger.DeleteStaleRefreshTokens(ctx, now.Add(-s.refreshRetention))
	if err != nil {
		return CleanupResult{Sessions: sessions}, err
	}
	metrics.CleanupDeleted.WithLabelValues("refresh_tokens").Add(float64(refresh))

	s.log.Info().
		Int64("sessions", sessions).
		Int64("refresh_tokens", refresh).
		Msg("token cleanup finished")

	return CleanupResult{Sessions: sessions, RefreshTokens: refresh}, nil
}

func (s *TokenService) mint(employeeID string) (TokenPair, model.Session, model.RefreshToken, error) {
	sessionToken, sessionExp, err := s.codec.Sign(employeeID, token.KindSession)
	if err != nil {
		return TokenPair{}, model.Session{}, model.RefreshToken{}, fmt.Errorf("sign session token: %w", err)
	}
	refreshToken, refreshExp, err := s.codec.Sign(employeeID, token.KindRefresh)
	if err != nil {
		return TokenPair{}, model.Session{}, model.RefreshToken{}, fmt.Errorf("sign refresh token: %w", err)
	}

	now := s.now()
	pair := TokenPair{
		SessionToken:     sessionToken,
		SessionExpiresAt: sessionExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}
	session := model.Session{
		TokenHash:  hashToken(sessionToken),
		EmployeeID: employeeID,
		ExpiresAt:  sessionExp,
		IsValid:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	refresh := model.RefreshToken{
		TokenHash:  hashToken(refreshToken),
		EmployeeID: employeeID,
		ExpiresAt:  refreshExp,
		CreatedAt:  now,
	}
	return pair, session, refresh, nil
}

// hashToken is the ledger key for a raw token; raw tokens never reach the
// store.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// IsAuthFailure reports whether err is an expected credential failure rather
// than an infrastructure fault.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrSessionInvalid) ||
		errors.Is(err, ErrRefreshExpired) ||
		errors.Is(err, ErrRefreshInvalid) ||
		errors.Is(err, ErrRefreshReused)
}
