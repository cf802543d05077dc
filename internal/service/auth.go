package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordLength is the bcrypt input limit in bytes.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

var ErrMisconfigured = errors.New("auth config invalid")

type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*model.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

type AuthService struct {
	employees EmployeeStore
	tokens    *TokenService
	cookieCfg CookieConfig
	log       zerolog.Logger
}

// Authentication is the outcome of a successful gateway check. Rotated is set
// when the session had to be renewed from the refresh token.
type Authentication struct {
	Employee *model.Employee
	Rotated  *TokenPair
}

func NewAuthService(employees EmployeeStore, tokens *TokenService, cfg config.AuthConfig, log zerolog.Logger) (*AuthService, error) {
	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}
	if cookieSameSite == http.SameSiteNoneMode && !cfg.CookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookieName := cfg.CookieName
	if strings.TrimSpace(cookieName) == "" {
		cookieName = "refreshToken"
	}
	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		employees: employees,
		tokens:    tokens,
		log:       log.With().Str("component", "auth").Logger(),
		cookieCfg: CookieConfig{
			Name:     cookieName,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cfg.CookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(cfg.RefreshTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// EnsureAdmin creates the bootstrap ADMIN employee when it is configured and
// no employee holds its email yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.EmployeeID == "" && cfg.Email == "" && cfg.Password == "" {
		return nil
	}
	if strings.TrimSpace(cfg.EmployeeID) == "" || strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.Password) == "" {
		return fmt.Errorf("%w: ADMIN_EMPLOYEE_ID/ADMIN_EMAIL/ADMIN_PASSWORD must be set together", ErrMisconfigured)
	}

	email := normalizeEmail(cfg.Email)
	_, err := s.employees.GetEmployeeByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	if err := validatePassword(cfg.Password); err != nil {
		return fmt.Errorf("%w: ADMIN_PASSWORD: %s", ErrMisconfigured, err.Fields["password"])
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.employees.CreateEmployee(ctx, model.Employee{
		ID:           cfg.EmployeeID,
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: string(hash),
		Position:     model.PositionAdmin,
		HireDate:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Sex:          model.SexOther,
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("employee_id", cfg.EmployeeID).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.Employee, TokenPair, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "id is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "email is required"
	}
	if err := validatePassword(req.Password); err != nil {
		fields["password"] = err.Fields["password"]
	}
	if req.ConfirmPassword != req.Password {
		fields["confirmPassword"] = "passwords do not match"
	}
	position := model.Position(req.Position)
	if !position.Valid() {
		fields["position"] = "position must be one of ASSOCIATE, MANAGER, DIRECTOR, ADMIN"
	}
	sex := model.Sex(req.Sex)
	if !sex.Valid() {
		fields["sex"] = "sex must be one of MALE, FEMALE, OTHER"
	}
	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		fields["hireDate"] = "hireDate must be a YYYY-MM-DD date"
	}
	if len(fields) > 0 {
		return nil, TokenPair{}, ValidationError("validation failed", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, InternalError(err)
	}

	employee, err := s.employees.CreateEmployee(ctx, model.Employee{
		ID:           strings.TrimSpace(req.ID),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Position:     position,
		HireDate:     hireDate,
		Sex:          sex,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateID):
			return nil, TokenPair{}, ConflictError("id", "employee id already in use")
		case errors.Is(err, db.ErrDuplicateEmail):
			return nil, TokenPair{}, ConflictError("email", "email already in use")
		}
		return nil, TokenPair{}, InternalError(err)
	}

	pair, err := s.tokens.Issue(ctx, employee.ID)
	if err != nil {
		return nil, TokenPair{}, InternalError(err)
	}

	s.log.Info().Str("employee_id", employee.ID).Str("position", string(employee.Position)).Msg("employee registered")
	return employee, pair, nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.Employee, TokenPair, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, TokenPair{}, ValidationError("validation failed", fields)
	}

	employee, err := s.employees.GetEmployeeByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, TokenPair{}, ValidationError("invalid credentials", nil)
		}
		return nil, TokenPair{}, InternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return nil, TokenPair{}, ValidationError("invalid credentials", nil)
	}

	pair, err := s.tokens.Issue(ctx, employee.ID)
	if err != nil {
		return nil, TokenPair{}, InternalError(err)
	}
	return employee, pair, nil
}

// Logout revokes whichever tokens were presented. It fails only when neither
// token is present.
func (s *AuthService) Logout(ctx context.Context, sessionToken, refreshToken string) error {
	if strings.TrimSpace(sessionToken) == "" && strings.TrimSpace(refreshToken) == "" {
		return UnauthenticatedError("authentication required", nil)
	}
	s.tokens.Revoke(ctx, sessionToken, refreshToken)
	return nil
}

// Authenticate resolves the principal for a request. An invalid or missing
// session falls back to rotating the refresh token. Credential failures are
// Unauthenticated, a missing employee is Unauthorized, and any unexpected
// failure is also Unauthorized so the gateway fails closed.
func (s *AuthService) Authenticate(ctx context.Context, sessionToken, refreshToken string) (*Authentication, error) {
	if sessionToken != "" {
		employeeID, err := s.tokens.VerifySession(ctx, sessionToken)
		if err == nil {
			return s.principal(ctx, employeeID, nil)
		}
		if !errors.Is(err, ErrSessionInvalid) {
			return nil, UnauthorizedError("access denied", err)
		}
	}

	if refreshToken == "" {
		return nil, UnauthenticatedError("authentication required", nil)
	}

	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if IsAuthFailure(err) {
			return nil, UnauthenticatedError("session expired", err)
		}
		return nil, UnauthorizedError("access denied", err)
	}

	employeeID, err := s.tokens.VerifySession(ctx, pair.SessionToken)
	if err != nil {
		return nil, UnauthorizedError("access denied", err)
	}
	return s.principal(ctx, employeeID, &pair)
}

func (s *AuthService) principal(ctx context.Context, employeeID string, rotated *TokenPair) (*Authentication, error) {
	employee, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, UnauthorizedError("employee not found", nil)
		}
		return nil, UnauthorizedError("access denied", err)
	}
	return &Authentication{Employee: employee, Rotated: rotated}, nil
}

// Cleanup runs the ledger garbage collection on demand.
func (s *AuthService) Cleanup(ctx context.Context) (model.TokenCleanupResponse, error) {
	result, err := s.tokens.Cleanup(ctx)
	if err != nil {
		return model.TokenCleanupResponse{}, InternalError(err)
	}
	return model.TokenCleanupResponse{
		DeletedSessions:      result.Sessions,
		DeletedRefreshTokens: result.RefreshTokens,
	}, nil
}

func validatePassword(password string) *Error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return FieldError("password", fmt.Sprintf("password must be between %d and %d bytes", minPasswordLength, maxPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", value)
	}
}
