package auth

import (
	"context"
	"strings"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Identity is a resolved, active user.
type Identity struct {
	UserID   uint
	Username string
	Role     models.Role
}

// Result is either Authenticated(identity) or Anonymous. The zero value is Anonymous.
type Result struct {
	identity Identity
	ok       bool
}

func Authenticated(id Identity) Result { return Result{identity: id, ok: true} }

func Anonymous() Result { return Result{} }

// Identity returns the identity and whether the result is authenticated.
func (r Result) Identity() (Identity, bool) { return r.identity, r.ok }

func (r Result) IsAuthenticated() bool { return r.ok }

// UserLookup is the slice of storage the authenticator needs.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Authenticator struct {
	tokens  *TokenIssuer
	users   UserLookup
	timeout time.Duration
	log     logging.Logger
}

// NewAuthenticator bounds every user lookup by timeout.
func NewAuthenticator(tokens *TokenIssuer, users UserLookup, timeout time.Duration, log logging.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, timeout: timeout, log: log}
}

// Authenticate resolves raw to an identity. Any failure (missing, malformed or expired
// token, unknown or inactive user) yields Anonymous; it never returns an error.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous()
	}
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return Anonymous()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	user, err := a.users.GetUser(lookupCtx, claims.UserID)
	if err != nil {
		if !apperror.Is(err, apperror.KindNotFound) {
			a.log.Warn("auth: user lookup for %d failed: %v", claims.UserID, err)
		}
		return Anonymous()
	}
	if !user.IsActive {
		return Anonymous()
	}
	return Authenticated(IdentityOf(user))
}

// Login checks credentials and issues an access token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, "", apperror.Unauthenticated("invalid credentials")
		}
		return nil, "", err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", apperror.Unauthenticated("invalid credentials")
	}
	if !user.CanLogin() {
		if user.IsActive && user.Role == models.RoleInstructor {
			return nil, "", apperror.Unauthenticated("instructor account is pending admin approval")
		}
		return nil, "", apperror.Unauthenticated("account is disabled")
	}
	token, err := a.tokens.Issue(user)
	if err != nil {
		return nil, "", apperror.Internal("issue token", err)
	}
	return user, token, nil
}

func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
