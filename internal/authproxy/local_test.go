package authproxy

import (
	"context"
	"testing"
	"time"

	"hackit/internal/config"
	"hackit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-at-least-32-characters-long"

func setupLocal(t *testing.T) (*Local, *miniredis.Miniredis) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewLocal(db, rdb, LocalConfig{Secret: testSecret, Issuer: "hackit-api", Audience: "hackit-client"}), mr
}

func TestLocal_SignUpAndSignIn(t *testing.T) {
	p, _ := setupLocal(t)
	ctx := context.Background()

	uid, err := p.SignUp(ctx, " Aisha@Example.com ", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	sess, err := p.SignIn(ctx, "aisha@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uid, sess.UID)
	assert.Equal(t, int64(LocalTokenTTL/time.Second), sess.ExpiresIn)

	got, err := p.VerifySession(ctx, sess.IDToken)
	require.NoError(t, err)
	assert.Equal(t, uid, got)
}

func TestLocal_SignUpErrors(t *testing.T) {
	p, _ := setupLocal(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "dup@example.com", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"duplicate", "DUP@example.com", "secret123", CodeEmailExists},
		{"bad email", "not-an-email", "secret123", CodeInvalidEmail},
		{"weak password", "fresh@example.com", "12345", CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tt.email, tt.password)
			pe, ok := AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, pe.Code)
		})
	}
}

func TestLocal_SignInWrongPassword(t *testing.T) {
	p, _ := setupLocal(t)
	ctx := context.Background()
	_, err := p.SignUp(ctx, "a@example.com", "secret123")
	require.NoError(t, err)

	for _, tc := range []struct{ email, pw string }{
		{"a@example.com", "wrong-password"},
		{"missing@example.com", "secret123"},
	} {
		_, err := p.SignIn(ctx, tc.email, tc.pw)
		pe, ok := AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid email or password", pe.Message())
	}
}

func TestLocal_VerifyRejectsForeignTokens(t *testing.T) {
	p, _ := setupLocal(t)
	ctx := context.Background()

	sign := func(secret string, mutate func(*jwt.RegisteredClaims)) string {
		claims := jwt.RegisteredClaims{
			Subject:   "uid-1",
			Issuer:    "hackit-api",
			Audience:  jwt.ClaimStrings{"hackit-client"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		if mutate != nil {
			mutate(&claims)
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	uid, err := p.VerifySession(ctx, sign(testSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	bad := map[string]string{
		"wrong secret":   sign("another-secret-that-is-32-characters", nil),
		"wrong audience": sign(testSecret, func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"x"} }),
		"wrong issuer":   sign(testSecret, func(c *jwt.RegisteredClaims) { c.Issuer = "x" }),
		"expired":        sign(testSecret, func(c *jwt.RegisteredClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }),
		"no expiry":      sign(testSecret, func(c *jwt.RegisteredClaims) { c.ExpiresAt = nil }),
	}
	for name, tok := range bad {
		_, err := p.VerifySession(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestLocal_RevokeBlacklistsJTI(t *testing.T) {
	p, mr := setupLocal(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	sess, err := p.SignIn(ctx, "a@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, p.Revoke(ctx, sess.IDToken))
	assert.Len(t, mr.Keys(), 1)

	_, err = p.VerifySession(ctx, sess.IDToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, p.Revoke(ctx, "garbage"), ErrInvalidToken)
}

func TestNew_SelectsProvider(t *testing.T) {
	p, err := New(&config.Config{AuthProvider: config.AuthProviderFirebase, FirebaseProjectID: "p"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Firebase{}, p)

	_, err = New(&config.Config{AuthProvider: config.AuthProviderLocal}, nil, nil)
	assert.Error(t, err)

	_, err = New(&config.Config{AuthProvider: "saml"}, nil, nil)
	assert.Error(t, err)
}
