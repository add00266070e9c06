package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"hackit/internal/authproxy"
	"hackit/internal/completion"
	"hackit/internal/config"
	"hackit/internal/database"
	"hackit/internal/docstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const apiTestSecret = "api-test-secret-at-least-32-characters"

type stubCompleter struct {
	reply  string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

type apiHarness struct {
	srv  *Server
	app  *fiber.App
	docs *docstore.SQLStore
	ai   *stubCompleter
}

func newAPIHarness(t *testing.T, flags string) *apiHarness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Env:            "test",
		JWTSecret:      apiTestSecret,
		JWTIssuer:      "hackit-api",
		JWTAudience:    "hackit-client",
		MediaDir:       t.TempDir(),
		AllowedOrigins: "http://localhost:3000",
		FeatureFlags:   flags,
	}
	docs := docstore.NewSQLStore(db)
	ai := &stubCompleter{reply: "Sure, here you go."}

	srv, err := NewServerWithDeps(cfg, db, rdb, Deps{
		Auth: authproxy.NewLocal(db, rdb, authproxy.LocalConfig{
			Secret:   apiTestSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}),
		Docs:       docs,
		Completion: ai,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.hub.Shutdown(context.Background())
		_ = rdb.Close()
		_ = sqlDB.Close()
	})

	return &apiHarness{srv: srv, app: srv.NewApp(), docs: docs, ai: ai}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (h *apiHarness) signUp(t *testing.T, email, name string) (uid, token string) {
	t.Helper()
	status, raw := h.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": email, "password": "secret123", "name": name,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var body struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Token)
	return body.UID, body.Token
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestAPI_SignUpSignInAndVerify(t *testing.T) {
	h := newAPIHarness(t, "")
	uid, token := h.signUp(t, "aisha@example.com", "Aisha Khan")

	doc, err := h.docs.GetUser(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Aisha Khan", doc.Name)

	status, raw := h.do(t, http.MethodPost, "/api/verify-session", "", fiber.Map{"token": token})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uid, decode[map[string]string](t, raw)["uid"])

	status, raw = h.do(t, http.MethodPost, "/api/verify-session", "", fiber.Map{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", decode[map[string]string](t, raw)["error"])

	status, _ = h.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": "aisha@example.com", "password": "secret123", "name": "Again",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(t, http.MethodPost, "/api/auth/signin", "", fiber.Map{
		"email": "aisha@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(t, http.MethodPost, "/api/auth/signin", "", fiber.Map{
		"email": "aisha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	h := newAPIHarness(t, "")
	_, token := h.signUp(t, "priya@example.com", "Priya Sharma")

	status, _ := h.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_SaveUser(t *testing.T) {
	h := newAPIHarness(t, "")

	status, raw := h.do(t, http.MethodPost, "/api/save-user", "", fiber.Map{"uid": "u-1", "email": "a@b.co"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing fields", decode[map[string]string](t, raw)["error"])

	status, raw = h.do(t, http.MethodPost, "/api/save-user", "", fiber.Map{
		"uid": "u-1", "email": "a@b.co", "name": "Elena", "role": "vendor",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]bool](t, raw)["success"])

	doc, err := h.docs.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "vendor", doc.Role)
}

func TestAPI_AuthRequired(t *testing.T) {
	h := newAPIHarness(t, "")

	status, raw := h.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authorization header required", decode[map[string]string](t, raw)["error"])

	status, _ = h.do(t, http.MethodGet, "/api/notifications", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_PostLikeCommentNotifications(t *testing.T) {
	h := newAPIHarness(t, "")
	_, author := h.signUp(t, "author@example.com", "Isabella Rossi")
	_, fan := h.signUp(t, "fan@example.com", "Elena Petrova")

	status, raw := h.do(t, http.MethodPost, "/api/posts", author, fiber.Map{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, status, string(raw))

	status, raw = h.do(t, http.MethodPost, "/api/posts", author, fiber.Map{"content": "Opening a second stall this weekend!"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	postID := decode[map[string]interface{}](t, raw)["id"].(string)
	require.NotEmpty(t, postID)

	status, raw = h.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	feed := decode[[]map[string]interface{}](t, raw)
	require.Len(t, feed, 1)
	assert.Equal(t, postID, feed[0]["id"])

	// Like, idempotent like, toggle back off.
	status, raw = h.do(t, http.MethodPut, "/api/posts/"+postID+"/like", fan, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	like := decode[map[string]interface{}](t, raw)
	assert.Equal(t, true, like["liked"])
	assert.Equal(t, float64(1), like["likes_count"])

	status, raw = h.do(t, http.MethodPut, "/api/posts/"+postID+"/like", fan, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, raw)["likes_count"])

	status, raw = h.do(t, http.MethodPost, "/api/posts/"+postID+"/like", fan, nil)
	require.Equal(t, http.StatusOK, status)
	toggled := decode[map[string]interface{}](t, raw)
	assert.Equal(t, false, toggled["liked"])
	assert.Equal(t, float64(0), toggled["likes_count"])

	status, _ = h.do(t, http.MethodPost, "/api/posts/missing/like", fan, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Comments
	status, _ = h.do(t, http.MethodPost, "/api/posts/"+postID+"/comments", fan, fiber.Map{"content": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = h.do(t, http.MethodPost, "/api/posts/"+postID+"/comments", fan, fiber.Map{"content": "Congrats!"})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = h.do(t, http.MethodGet, "/api/posts/"+postID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	comments := decode[[]map[string]interface{}](t, raw)
	require.Len(t, comments, 1)
	assert.Equal(t, "Congrats!", comments[0]["content"])

	status, raw = h.do(t, http.MethodGet, "/api/posts/"+postID, author, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, raw)["comments_count"])

	// The author hears about the like and the comment; the fan hears nothing.
	status, raw = h.do(t, http.MethodGet, "/api/notifications", author, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Notifications []map[string]interface{} `json:"notifications"`
		UnreadCount   int                      `json:"unread_count"`
	}](t, raw)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.UnreadCount)

	status, raw = h.do(t, http.MethodGet, "/api/notifications/unread-count", fan, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), decode[map[string]float64](t, raw)["unread_count"])

	firstID := list.Notifications[0]["id"].(string)
	status, raw = h.do(t, http.MethodPost, "/api/notifications/"+firstID+"/read", author, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, float64(1), decode[map[string]float64](t, raw)["unread_count"])

	status, raw = h.do(t, http.MethodPost, "/api/notifications/read-all", author, nil)
	require.Equal(t, http.StatusOK, status)
	readAll := decode[map[string]float64](t, raw)
	assert.Equal(t, float64(1), readAll["updated"])
	assert.Equal(t, float64(0), readAll["unread_count"])
}

func TestAPI_LikeNotificationsFlagOff(t *testing.T) {
	h := newAPIHarness(t, "like_notifications=off")
	_, author := h.signUp(t, "author@example.com", "Samantha Chen")
	_, fan := h.signUp(t, "fan@example.com", "Priya Sharma")

	_, raw := h.do(t, http.MethodPost, "/api/posts", author, fiber.Map{"content": "New bakery menu"})
	postID := decode[map[string]interface{}](t, raw)["id"].(string)

	status, _ := h.do(t, http.MethodPut, "/api/posts/"+postID+"/like", fan, nil)
	require.Equal(t, http.StatusOK, status)

	_, raw = h.do(t, http.MethodGet, "/api/notifications/unread-count", author, nil)
	assert.Equal(t, float64(0), decode[map[string]float64](t, raw)["unread_count"])
}

func TestAPI_Preview(t *testing.T) {
	h := newAPIHarness(t, "")
	_, author := h.signUp(t, "author@example.com", "Aisha Khan")
	_, raw := h.do(t, http.MethodPost, "/api/posts", author, fiber.Map{"content": "Fresh produce today"})
	postID := decode[map[string]interface{}](t, raw)["id"].(string)

	status, raw := h.do(t, http.MethodGet, "/api/preview/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, raw), 1)

	status, raw = h.do(t, http.MethodPost, "/api/preview/posts/"+postID+"/like", "", nil)
	require.Equal(t, http.StatusOK, status)
	res := decode[map[string]interface{}](t, raw)
	assert.Equal(t, true, res["restricted"])
	assert.Equal(t, float64(0), res["likes_count"])

	status, raw = h.do(t, http.MethodGet, "/api/posts/"+postID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), decode[map[string]interface{}](t, raw)["likes_count"])

	status, _ = h.do(t, http.MethodPost, "/api/preview/posts/"+postID+"/comments", "", fiber.Map{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = h.do(t, http.MethodGet, "/api/preview/features/market", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	feature := decode[map[string]interface{}](t, raw)
	assert.Equal(t, "You need an account to access Market", feature["error"])
	assert.Equal(t, true, feature["restricted"])

	status, _ = h.do(t, http.MethodGet, "/api/preview/features/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_Profile(t *testing.T) {
	h := newAPIHarness(t, "")
	uid, token := h.signUp(t, "elena@example.com", "Elena Petrova")

	status, raw := h.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uid, decode[map[string]interface{}](t, raw)["user_id"])

	status, raw = h.do(t, http.MethodPut, "/api/profile", token, fiber.Map{"name": "Elena", "location": " "})
	require.Equal(t, http.StatusBadRequest, status)
	formErr := decode[map[string]interface{}](t, raw)
	assert.Contains(t, formErr["error"], "Please fill in all required fields")
	assert.Len(t, formErr["items"], 2)

	status, raw = h.do(t, http.MethodPut, "/api/profile", token, fiber.Map{
		"name": "Elena Petrova", "business_position": "Owner", "location": "Cebu", "avatar_color": "#20B2AA",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	saved := decode[map[string]interface{}](t, raw)
	assert.Equal(t, "Owner", saved["business_position"])
	assert.Equal(t, "#20B2AA", saved["avatar_color"])

	status, _ = h.do(t, http.MethodPut, "/api/profile", token, fiber.Map{
		"name": "Elena Petrova", "business_position": "Owner", "location": "Cebu", "avatar_color": "#123456",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = h.do(t, http.MethodGet, "/api/users/"+uid+"/profile", "", nil)
	require.Equal(t, http.StatusOK, status)
	public := decode[struct {
		Profile map[string]interface{} `json:"profile"`
		Online  bool                   `json:"online"`
	}](t, raw)
	assert.Equal(t, "Cebu", public.Profile["location"])
	assert.False(t, public.Online)

	status, raw = h.do(t, http.MethodGet, "/api/profile/palette", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, decode[map[string][]string](t, raw)["colors"])
}

func TestAPI_AvatarUploadFlagOff(t *testing.T) {
	h := newAPIHarness(t, "avatar_upload=off")
	_, token := h.signUp(t, "isa@example.com", "Isabella Rossi")

	status, _ := h.do(t, http.MethodPut, "/api/profile/avatar", token, fiber.Map{"image": "data:image/png;base64,AAAA"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_Onboarding(t *testing.T) {
	h := newAPIHarness(t, "")
	_, token := h.signUp(t, "vendor@example.com", "Aling Nena")

	status, raw := h.do(t, http.MethodGet, "/api/onboarding/languages", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, raw), 3)

	status, raw = h.do(t, http.MethodGet, "/api/onboarding/languages/tl/path", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "May negosyo na ako", decode[map[string]string](t, raw)["option1"])

	status, _ = h.do(t, http.MethodGet, "/api/onboarding/languages/xx/path", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = h.do(t, http.MethodPut, "/api/onboarding/path", token, fiber.Map{"language": "en", "option": "option1"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "existing", decode[map[string]string](t, raw)["route"])

	status, raw = h.do(t, http.MethodPut, "/api/onboarding/vendor", token, fiber.Map{"store_name": "Nena's Store", "store_type": "sari-sari"})
	require.Equal(t, http.StatusOK, status, string(raw))
	vendor := decode[map[string]interface{}](t, raw)
	assert.Equal(t, "Nena's Store", vendor["store_name"])

	status, _ = h.do(t, http.MethodPut, "/api/onboarding/vendor", token, fiber.Map{"store_name": "X", "store_type": "spaceport"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = h.do(t, http.MethodGet, "/api/onboarding/inventory", token, nil)
	require.Equal(t, http.StatusOK, status)
	inv := decode[struct {
		Items      []map[string]interface{} `json:"items"`
		GrandTotal float64                  `json:"grand_total"`
	}](t, raw)
	require.Len(t, inv.Items, 3)

	status, raw = h.do(t, http.MethodPost, "/api/onboarding/inventory", token, fiber.Map{
		"name": "Turon", "pcs": 10, "cost": 5, "price": 10,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	line := decode[map[string]interface{}](t, raw)
	itemID := line["id"].(float64)

	status, raw = h.do(t, http.MethodGet, "/api/onboarding/inventory", token, nil)
	require.Equal(t, http.StatusOK, status)
	after := decode[struct {
		Items      []map[string]interface{} `json:"items"`
		GrandTotal float64                  `json:"grand_total"`
	}](t, raw)
	assert.Len(t, after.Items, 4)
	assert.Greater(t, after.GrandTotal, inv.GrandTotal)

	status, _ = h.do(t, http.MethodDelete, "/api/onboarding/inventory/"+strconv.FormatInt(int64(itemID), 10), token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAPI_AICompletion(t *testing.T) {
	h := newAPIHarness(t, "")
	_, token := h.signUp(t, "ai@example.com", "Priya Sharma")

	status, raw := h.do(t, http.MethodPost, "/api/ai/openai", token, fiber.Map{"prompt": "Name my store"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sure, here you go.", decode[map[string]string](t, raw)["result"])
	assert.Equal(t, "Name my store", h.ai.prompt)

	status, raw = h.do(t, http.MethodPost, "/api/ai/openai", token, fiber.Map{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing prompt", decode[map[string]string](t, raw)["error"])

	h.ai.err = &completion.UpstreamError{Status: http.StatusTooManyRequests, Message: "quota exceeded"}
	status, raw = h.do(t, http.MethodPost, "/api/ai/openai", token, fiber.Map{"prompt": "again"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "quota exceeded", decode[map[string]string](t, raw)["error"])

	status, _ = h.do(t, http.MethodPost, "/api/ai/openai", "", fiber.Map{"prompt": "anon"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_FeatureFlags(t *testing.T) {
	h := newAPIHarness(t, "ai_completion=off")

	status, raw := h.do(t, http.MethodGet, "/api/feature-flags", "", nil)
	require.Equal(t, http.StatusOK, status)
	flags := decode[struct {
		Evaluated map[string]bool `json:"evaluated"`
	}](t, raw)
	assert.False(t, flags.Evaluated["ai_completion"])
	assert.True(t, flags.Evaluated["like_notifications"])
}
