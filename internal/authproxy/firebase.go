package authproxy

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"hackit/internal/cache"
	"hackit/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultFirebaseAuthURL  = "https://identitytoolkit.googleapis.com/v1"
	defaultFirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	defaultCertsMaxAge      = time.Hour
)

// FirebaseConfig points the provider at a Firebase project.
type FirebaseConfig struct {
	ProjectID string
	APIKey    string
	AuthURL   string
	CertsURL  string
}

// Firebase signs users up and in through the Identity Toolkit REST API and
// verifies ID tokens against Google's published securetoken certificates.
type Firebase struct {
	cfg    FirebaseConfig
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	keysUntil time.Time
	now       func() time.Time
}

// NewFirebase returns a Firebase provider using client for outbound calls.
func NewFirebase(cfg FirebaseConfig, client *http.Client) *Firebase {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultFirebaseAuthURL
	}
	if cfg.CertsURL == "" {
		cfg.CertsURL = defaultFirebaseCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	return &Firebase{cfg: cfg, client: client, now: time.Now}
}

type identityResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (string, error) {
	res, err := f.call(ctx, OpSignUp, "accounts:signUp", email, password)
	if err != nil {
		return "", err
	}
	return res.LocalID, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (Session, error) {
	res, err := f.call(ctx, OpSignIn, "accounts:signInWithPassword", email, password)
	if err != nil {
		return Session{}, err
	}
	expiresIn, _ := strconv.ParseInt(res.ExpiresIn, 10, 64)
	return Session{
		UID:          res.LocalID,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

func (f *Firebase) call(ctx context.Context, op, method, email, password string) (res *identityResponse, err error) {
	done := observability.TrackExternalCall("firebase", op)
	defer func() { done(err) }()

	ctx, span := observability.StartClientSpan(ctx, "firebase", op)
	defer func() { observability.EndSpan(span, err) }()

	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, &ProviderError{Op: op, Err: err}
	}

	endpoint := strings.TrimRight(f.cfg.AuthURL, "/") + "/" + method + "?key=" + url.QueryEscape(f.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ie identityError
		_ = json.Unmarshal(raw, &ie)
		return nil, &ProviderError{Op: op, Code: parseCode(ie.Error.Message), Status: resp.StatusCode}
	}

	var out identityResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ProviderError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if out.LocalID == "" {
		return nil, &ProviderError{Op: op, Status: resp.StatusCode, Err: errors.New("response without localId")}
	}
	return &out, nil
}

// VerifySession checks an RS256 ID token and returns its subject.
func (f *Firebase) VerifySession(ctx context.Context, token string) (string, error) {
	if f.cfg.ProjectID == "" || token == "" {
		return "", ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer("https://securetoken.google.com/"+f.cfg.ProjectID),
		jwt.WithAudience(f.cfg.ProjectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(f.now),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid")
		}
		return f.publicKey(ctx, kid)
	})
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (f *Firebase) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	f.mu.RLock()
	key, ok := f.keys[kid]
	fresh := f.now().Before(f.keysUntil)
	f.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	keys, until, err := f.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.keys = keys
	f.keysUntil = until
	f.mu.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// fetchKeys loads the PEM certificates, consulting the shared Redis copy first.
func (f *Firebase) fetchKeys(ctx context.Context) (keys map[string]*rsa.PublicKey, until time.Time, err error) {
	var pems map[string]string
	if found, _ := cache.GetJSON(ctx, cache.FirebaseCertsKey, &pems); found && len(pems) > 0 {
		keys, err = parseCerts(pems)
		if err == nil {
			return keys, f.now().Add(time.Minute), nil
		}
	}

	done := observability.TrackExternalCall("firebase", "certs")
	defer func() { done(err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.CertsURL, nil)
	if err != nil {
		return nil, time.Time{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, time.Time{}, fmt.Errorf("fetch certs: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode certs: %w", err)
	}
	keys, err = parseCerts(pems)
	if err != nil {
		return nil, time.Time{}, err
	}

	maxAge := cacheMaxAge(resp.Header.Get("Cache-Control"))
	_ = cache.SetJSON(ctx, cache.FirebaseCertsKey, pems, maxAge)
	return keys, f.now().Add(maxAge), nil
}

func parseCerts(pems map[string]string) (map[string]*rsa.PublicKey, error) {
	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, p := range pems {
		block, _ := pem.Decode([]byte(p))
		if block == nil {
			return nil, fmt.Errorf("cert %q: no PEM block", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cert %q: %w", kid, err)
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("cert %q: not an RSA key", kid)
		}
		keys[kid] = pub
	}
	return keys, nil
}

func cacheMaxAge(header string) time.Duration {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsMaxAge
}
