// Package auth implements password based admin sign in with JWT bearer tokens. Auth
// state changes fan out to subscribers so the application admin flag has one writer.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

const AuthTokenDuration = time.Hour * 24 * 31

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenCreate        = errors.New("failed to create auth token")
	ErrTokenInvalid       = errors.New("auth token invalid")
	ErrHashPassword       = errors.New("failed to hash password")
)

type Admin struct {
	AdminID      int        `json:"admin_id"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"-"`
	CreatedOn    time.Time  `json:"created_on"`
	LastLoginOn  *time.Time `json:"last_login_on,omitzero"`
}

type EventType int

const (
	SignedIn EventType = iota
	SignedOut
)

// StateChange is emitted on every sign in and sign out.
type StateChange struct {
	Event EventType
	Email string
}

type Repository interface {
	GetAdminByEmail(ctx context.Context, email string) (Admin, error)
	SaveAdmin(ctx context.Context, admin *Admin) error
	TouchLastLogin(ctx context.Context, adminID int) error
}

type Auth struct {
	repository Repository
	signingKey []byte
	tokenTTL   time.Duration
	events     *broadcaster.Broadcaster[StateChange]
}

func NewAuth(repository Repository, signingKey string, tokenTTL time.Duration) *Auth {
	if tokenTTL <= 0 {
		tokenTTL = AuthTokenDuration
	}

	return &Auth{
		repository: repository,
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		events:     broadcaster.New[StateChange](),
	}
}

// Subscribe registers a channel that receives every subsequent auth state change.
func (u *Auth) Subscribe(eventChan chan StateChange) error {
	return u.events.Consume(eventChan)
}

func (u *Auth) Unsubscribe(eventChan chan StateChange) {
	u.events.Unregister(eventChan)
}

// SignIn verifies the password against the stored hash and issues a bearer token.
func (u *Auth) SignIn(ctx context.Context, email string, password string) (string, error) {
	admin, errAdmin := u.repository.GetAdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errAdmin != nil {
		return "", ErrInvalidCredentials
	}

	if errCompare := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); errCompare != nil {
		return "", ErrInvalidCredentials
	}

	token, errToken := u.NewToken(admin.Email)
	if errToken != nil {
		return "", errToken
	}

	if errTouch := u.repository.TouchLastLogin(ctx, admin.AdminID); errTouch != nil {
		slog.Warn("Failed to update last login", log.ErrAttr(errTouch))
	}

	u.events.Emit(StateChange{Event: SignedIn, Email: admin.Email})

	slog.Info("Admin signed in", slog.String("email", admin.Email))

	return token, nil
}

func (u *Auth) SignOut(_ context.Context, email string) {
	u.events.Emit(StateChange{Event: SignedOut, Email: email})

	slog.Info("Admin signed out", slog.String("email", email))
}

// NewAdmin creates an admin record with a bcrypt hash of the given password.
func NewAdmin(email string, password string) (Admin, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errHash != nil {
		return Admin{}, errors.Join(errHash, ErrHashPassword)
	}

	return Admin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		CreatedOn:    time.Now(),
	}, nil
}

func (u *Auth) NewToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(u.tokenTTL)),
	}

	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.signingKey)
	if errSign != nil {
		return "", errors.Join(errSign, ErrTokenCreate)
	}

	return signed, nil
}

// EmailFromToken validates a bearer token and returns the admin email it was issued to.
func (u *Auth) EmailFromToken(token string) (string, error) {
	var claims jwt.RegisteredClaims

	parsed, errParse := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return u.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errParse != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

const ctxKeyAdminEmail = "admin_email"

// Middleware rejects requests without a valid admin bearer token.
func (u *Auth) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, httphelper.ErrPermissionDenied))
			ctx.Abort()

			return
		}

		email, errEmail := u.EmailFromToken(token)
		if errEmail != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, httphelper.ErrPermissionDenied))
			ctx.Abort()

			return
		}

		ctx.Set(ctxKeyAdminEmail, email)
		ctx.Next()
	}
}

// CurrentAdmin returns the admin email attached by Middleware, if any.
func CurrentAdmin(ctx *gin.Context) (string, bool) {
	email, found := ctx.Get(ctxKeyAdminEmail)
	if !found {
		return "", false
	}

	value, ok := email.(string)

	return value, ok
}
