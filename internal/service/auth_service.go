package service

import (
	"context"
	"errors"
	"strings"

	"hackit/internal/authproxy"
	"hackit/internal/docstore"
	"hackit/internal/models"
	"hackit/internal/observability"
	"hackit/internal/repository"
)

var errDocstoreUnavailable = errors.New("document store not configured")

// DefaultRole is stored for accounts that sign up without one.
const DefaultRole = models.RoleMember

type AuthService struct {
	provider authproxy.Provider
	docs     docstore.Store
	profiles repository.ProfileRepository
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

func NewAuthService(provider authproxy.Provider, docs docstore.Store, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{provider: provider, docs: docs, profiles: profiles}
}

// SignUp creates the account, writes its users document and default profile,
// then signs in to hand back a session token.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*authproxy.Session, error) {
	uid, err := s.provider.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = DefaultRole
	}
	if s.docs != nil {
		if err := s.SaveUser(ctx, uid, models.DocUser{
			Email: strings.TrimSpace(in.Email),
			Name:  strings.TrimSpace(in.Name),
			Role:  role,
		}); err != nil {
			return nil, err
		}
	}
	if s.profiles != nil {
		if _, err := s.profiles.GetOrCreateDefault(ctx, uid); err != nil {
			return nil, err
		}
	}

	session, err := s.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*authproxy.Session, error) {
	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifySession returns the uid a token was issued to.
func (s *AuthService) VerifySession(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", authproxy.ErrInvalidToken
	}
	return s.provider.VerifySession(ctx, token)
}

// Logout revokes the token when the provider supports it.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	revoker, ok := s.provider.(authproxy.Revoker)
	if !ok {
		return nil
	}
	return revoker.Revoke(ctx, token)
}

// SaveUser writes the users/{uid} document.
func (s *AuthService) SaveUser(ctx context.Context, uid string, doc models.DocUser) error {
	if s.docs == nil {
		return models.NewInternalError(errDocstoreUnavailable)
	}
	done := observability.TrackExternalCall("docstore", "save_user")
	err := s.docs.SaveUser(ctx, uid, doc)
	done(err)
	if err != nil {
		observability.GlobalLogger.ErrorContext(ctx, "save user document failed", "uid", uid, "error", err)
		return models.NewInternalError(err)
	}
	return nil
}
