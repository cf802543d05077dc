// Package token signs and verifies the bearer tokens handed to employees.
//
// Session and refresh tokens are HS256 JWTs signed with distinct secrets and
// lifetimes. Each token carries its kind and a random jti, so two tokens minted
// for the same employee in the same second are still distinct strings.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrMisconfigured = errors.New("token codec misconfigured")
)

type Kind string

const (
	KindSession Kind = "session"
	KindRefresh Kind = "refresh"
)

type Config struct {
	SessionSecret string
	RefreshSecret string
	SessionTTL    time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Claims struct {
	EmployeeID string    `json:"employeeId"`
	Kind       Kind      `json:"kind"`
	ExpiresAt  time.Time `json:"-"`
}

type tokenClaims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

type Codec struct {
	secrets map[Kind][]byte
	ttls    map[Kind]time.Duration
	issuer  string
	now     func() time.Time
}

func NewCodec(cfg Config) (*Codec, error) {
	return NewCodecWithClock(cfg, time.Now)
}

// NewCodecWithClock is NewCodec with an injectable clock.
func NewCodecWithClock(cfg Config, now func() time.Time) (*Codec, error) {
	if strings.TrimSpace(cfg.SessionSecret) == "" || strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, fmt.Errorf("%w: both secrets are required", ErrMisconfigured)
	}
	if cfg.SessionSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: session and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.SessionTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: TTLs must be positive", ErrMisconfigured)
	}
	if now == nil {
		now = time.Now
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "helping-hands"
	}
	return &Codec{
		secrets: map[Kind][]byte{
			KindSession: []byte(cfg.SessionSecret),
			KindRefresh: []byte(cfg.RefreshSecret),
		},
		ttls: map[Kind]time.Duration{
			KindSession: cfg.SessionTTL,
			KindRefresh: cfg.RefreshTTL,
		},
		issuer: issuer,
		now:    now,
	}, nil
}

// TTL returns the lifetime of tokens of the given kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.ttls[kind]
}

// Sign mints a token of the given kind for employeeID and returns it with its
// expiry. JWT timestamps have second precision, so the returned expiry is
// truncated to match what Verify will report.
func (c *Codec) Sign(employeeID string, kind Kind) (string, time.Time, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: unknown kind %q", ErrMisconfigured, kind)
	}
	if employeeID == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty employee id", ErrTokenInvalid)
	}

	now := c.now()
	expiresAt := now.Add(c.ttls[kind]).Truncate(time.Second)
	claims := tokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID,
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, kind, and expiry of raw.
func (c *Codec) Verify(raw string, kind Kind) (Claims, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrMisconfigured, kind)
	}
	if strings.TrimSpace(raw) == "" {
		return Claims{}, ErrTokenInvalid
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Kind != kind || claims.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}

	return Claims{
		EmployeeID: claims.Subject,
		Kind:       claims.Kind,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
