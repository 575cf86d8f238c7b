// Package auth issues and verifies the bearer tokens that guard the API.
package auth

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	Issuer   = "snap-vault"
	Audience = "snap-vault-api"
)

const invalidCredentials = "Invalid email or password"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
}

type UserFinder interface {
	FindOne(ctx context.Context, email string) (*models.User, error)
}

type Options struct {
	Secret         string
	TokenDuration  time.Duration
	CookieDuration time.Duration
	URL            string
	AvatarDir      string
}

// Guard wraps the go-pkgz auth service with the account lookup.
type Guard struct {
	service        *auth.Service
	users          UserFinder
	tokenDuration  time.Duration
	cookieDuration time.Duration
	now            func() time.Time
	compare        func(hash, password []byte) error
}

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("snap-vault-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

func NewGuard(users UserFinder, opts Options) *Guard {
	if opts.TokenDuration <= 0 {
		opts.TokenDuration = 24 * time.Hour
	}
	if opts.CookieDuration <= 0 {
		opts.CookieDuration = 7 * 24 * time.Hour
	}

	secret := opts.Secret
	service := auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  opts.TokenDuration,
		CookieDuration: opts.CookieDuration,
		Issuer:         Issuer,
		URL:            opts.URL,
		AvatarStore:    avatar.NewLocalFS(opts.AvatarDir),
	})

	g := &Guard{
		service:        service,
		users:          users,
		tokenDuration:  opts.TokenDuration,
		cookieDuration: opts.CookieDuration,
		now:            time.Now,
		compare:        bcrypt.CompareHashAndPassword,
	}

	service.AddDirectProvider("local", provider.CredCheckerFunc(g.CheckCredentials))
	return g
}

// CookieDuration is how long the browser keeps the token cookie.
func (g *Guard) CookieDuration() time.Duration {
	return g.cookieDuration
}

// CheckCredentials reports whether the password matches the account. It
// backs the direct provider and Login.
func (g *Guard) CheckCredentials(email, password string) (bool, error) {
	user, err := g.lookup(context.Background(), email, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (g *Guard) lookup(ctx context.Context, email, password string) (*models.User, error) {
	user, err := g.users.FindOne(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = g.compare(dummyHash(), []byte(password))
		return nil, nil
	}
	if !g.checkPasswordHash(password, user.Password) {
		return nil, nil
	}
	return user, nil
}

func (g *Guard) checkPasswordHash(password, hash string) bool {
	err := g.compare([]byte(hash), []byte(password))
	return err == nil
}

// Login verifies the credentials and issues a signed token. Unknown email
// and wrong password fail the same way.
func (g *Guard) Login(ctx context.Context, email, password string) (string, Identity, error) {
	user, err := g.lookup(ctx, email, password)
	if err != nil {
		return "", Identity{}, apperr.Internal("Failed to verify credentials", err)
	}
	if user == nil {
		return "", Identity{}, apperr.Authentication(invalidCredentials)
	}

	now := g.now()
	claims := token.Claims{
		User: &token.User{
			ID:    strconv.FormatUint(uint64(user.ID), 10),
			Name:  user.Email,
			Email: user.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := g.service.TokenService().Token(claims)
	if err != nil {
		return "", Identity{}, apperr.Internal("Failed to generate token", err)
	}
	return tokenStr, Identity{UserID: user.ID, Email: user.Email}, nil
}

// Verify checks the signature, issuer and expiry of a token and returns the
// identity it carries.
func (g *Guard) Verify(tokenStr string) (Identity, error) {
	invalid := apperr.Authentication("Invalid or expired token")

	claims, err := g.service.TokenService().Parse(tokenStr)
	if err != nil || claims.User == nil {
		return Identity{}, invalid
	}
	if claims.Issuer != Issuer {
		return Identity{}, invalid
	}
	if claims.ExpiresAt == nil || !g.now().Before(claims.ExpiresAt.Time) {
		return Identity{}, invalid
	}

	userID, err := strconv.ParseUint(claims.User.ID, 10, 0)
	if err != nil || userID == 0 {
		return Identity{}, invalid
	}
	return Identity{UserID: uint(userID), Email: claims.User.Email}, nil
}
