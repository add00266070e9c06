package authproxy

import (
	"context"
	"fmt"
	"time"

	"hackit/internal/cache"
	"hackit/internal/models"
	"hackit/internal/repository"
	"hackit/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalTokenTTL is the lifetime of tokens issued by the local provider.
const LocalTokenTTL = 7 * 24 * time.Hour

// LocalConfig signs and checks local HS256 tokens.
type LocalConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Local keeps accounts in the users table and issues HS256 JWTs. Revoked
// token ids are blacklisted in Redis until the token would have expired.
type Local struct {
	users repository.UserRepository
	rdb   *redis.Client
	cfg   LocalConfig
	now   func() time.Time
}

// NewLocal returns the development/test identity provider.
func NewLocal(db *gorm.DB, rdb *redis.Client, cfg LocalConfig) *Local {
	return &Local{users: repository.NewUserRepository(db), rdb: rdb, cfg: cfg, now: time.Now}
}

func (l *Local) SignUp(ctx context.Context, email, password string) (string, error) {
	email, err := validation.NormalizeEmail(email)
	if err != nil {
		return "", &ProviderError{Op: OpSignUp, Code: CodeInvalidEmail}
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", &ProviderError{Op: OpSignUp, Code: CodeWeakPassword, Err: err}
	}

	existing, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return "", &ProviderError{Op: OpSignUp, Err: err}
	}
	if existing != nil {
		return "", &ProviderError{Op: OpSignUp, Code: CodeEmailExists}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", &ProviderError{Op: OpSignUp, Err: err}
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         models.RoleMember,
		PasswordHash: string(hash),
	}
	if err := l.users.Create(ctx, user); err != nil {
		if appErr, ok := models.AsAppError(err); ok && appErr.Code == models.CodeConflict {
			return "", &ProviderError{Op: OpSignUp, Code: CodeEmailExists}
		}
		return "", &ProviderError{Op: OpSignUp, Err: err}
	}
	return user.ID, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (Session, error) {
	email, err := validation.NormalizeEmail(email)
	if err != nil {
		return Session{}, &ProviderError{Op: OpSignIn, Code: CodeInvalidEmail}
	}

	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, &ProviderError{Op: OpSignIn, Err: err}
	}
	if user == nil {
		return Session{}, &ProviderError{Op: OpSignIn, Code: CodeInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, &ProviderError{Op: OpSignIn, Code: CodeInvalidCredentials}
	}

	token, err := l.issue(user.ID)
	if err != nil {
		return Session{}, &ProviderError{Op: OpSignIn, Err: err}
	}
	return Session{
		UID:       user.ID,
		IDToken:   token,
		ExpiresIn: int64(LocalTokenTTL / time.Second),
	}, nil
}

func (l *Local) issue(uid string) (string, error) {
	if l.cfg.Secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := l.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    l.cfg.Issuer,
		Audience:  jwt.ClaimStrings{l.cfg.Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(LocalTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(l.cfg.Secret))
}

func (l *Local) parse(token string) (*jwt.RegisteredClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(l.cfg.Issuer),
		jwt.WithAudience(l.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(l.cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (l *Local) VerifySession(ctx context.Context, token string) (string, error) {
	claims, err := l.parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.ID != "" && l.rdb != nil {
		n, err := l.rdb.Exists(ctx, cache.BlacklistKey(claims.ID)).Result()
		if err == nil && n > 0 {
			return "", ErrInvalidToken
		}
	}
	return claims.Subject, nil
}

// Revoke blacklists the token's jti until it expires.
func (l *Local) Revoke(ctx context.Context, token string) error {
	claims, err := l.parse(token)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.ID == "" || l.rdb == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	return l.rdb.Set(ctx, cache.BlacklistKey(claims.ID), "1", ttl).Err()
}
