package auth

import (
	"log/slog"
	"sync"
	"time"

	"example.com/wordlink/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = apperr.New(apperr.Unauthorized, "invalid_password", "invalid password")
	ErrUnauthorized    = apperr.New(apperr.Unauthorized, "unauthorized", "invalid or expired token")
)

// AdminService issues and checks admin bearer tokens. Logged-out tokens are remembered
// in memory until they expire.
type AdminService struct {
	secret       []byte
	ttl          time.Duration
	passwordHash []byte
	log          *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewAdminService(secret []byte, passwordHash string, ttl time.Duration, log *slog.Logger) *AdminService {
	if log == nil {
		log = slog.Default()
	}
	return &AdminService{
		secret:       secret,
		ttl:          ttl,
		passwordHash: []byte(passwordHash),
		log:          log,
		now:          time.Now,
		revoked:      make(map[string]time.Time),
	}
}

// Login checks the admin password and returns a signed token with its lifetime.
func (s *AdminService) Login(password string) (string, time.Duration, error) {
	if password == "" || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.log.Warn("failed admin login attempt")
		return "", 0, ErrInvalidPassword
	}

	token, _, err := Sign(s.secret, RoleAdmin, RoleAdmin, s.now(), s.ttl)
	if err != nil {
		return "", 0, err
	}
	s.log.Info("admin logged in")
	return token, s.ttl, nil
}

// Authenticate returns the claims of a valid, unrevoked admin token.
func (s *AdminService) Authenticate(token string) (*Claims, error) {
	claims, err := Verify(s.secret, token, s.now())
	if err != nil || claims.Role != RoleAdmin {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *AdminService) Logout(claims *Claims) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
	s.log.Info("admin logged out")
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
