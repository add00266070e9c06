// Package authproxy delegates sign-up, sign-in and session verification to an
// identity provider: Firebase Authentication, or a local GORM-backed fallback.
package authproxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hackit/internal/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RequestTimeout bounds every outbound call to the identity provider.
const RequestTimeout = 10 * time.Second

// Session is the result of a successful sign-in.
type Session struct {
	UID          string `json:"uid"`
	IDToken      string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Provider is the identity backend.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (uid string, err error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	VerifySession(ctx context.Context, token string) (uid string, err error)
}

// Revoker is implemented by providers that can invalidate an issued token.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// New builds the provider selected by AUTH_PROVIDER.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (Provider, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderFirebase:
		return NewFirebase(FirebaseConfig{
			ProjectID: cfg.FirebaseProjectID,
			APIKey:    cfg.FirebaseAPIKey,
			AuthURL:   cfg.FirebaseAuthURL,
			CertsURL:  cfg.FirebaseCertsURL,
		}, &http.Client{Timeout: RequestTimeout}), nil
	case config.AuthProviderLocal, "":
		if db == nil {
			return nil, fmt.Errorf("local auth provider requires a database connection")
		}
		return NewLocal(db, rdb, LocalConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}
