package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"hackit/internal/authproxy"
	"hackit/internal/media"
	"hackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPostRepo is an in-memory repository.PostRepository.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	likes map[string]bool
	seq   int
}

func newMemPostRepo(posts ...*models.Post) *memPostRepo {
	r := &memPostRepo{posts: map[string]*models.Post{}, likes: map[string]bool{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func likeKey(userID, postID string) string { return userID + "|" + postID }

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if post.ID == "" {
		post.ID = fmt.Sprintf("p%d", r.seq)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	for i := range post.Images {
		post.Images[i].PostID = post.ID
		post.Images[i].Position = i
	}
	r.posts[post.ID] = post
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id, viewerID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *p
	cp.Liked = viewerID != "" && r.likes[likeKey(viewerID, id)]
	return &cp, nil
}

func (r *memPostRepo) List(_ context.Context, limit, offset int, viewerID string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		cp.Liked = viewerID != "" && r.likes[likeKey(viewerID, p.ID)]
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memPostRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *memPostRepo) Like(_ context.Context, userID, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, models.NewNotFoundError("Post", postID)
	}
	if r.likes[likeKey(userID, postID)] {
		return false, nil
	}
	r.likes[likeKey(userID, postID)] = true
	p.LikesCount++
	return true, nil
}

func (r *memPostRepo) Unlike(_ context.Context, userID, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.likes[likeKey(userID, postID)] {
		return false, nil
	}
	delete(r.likes, likeKey(userID, postID))
	if p, ok := r.posts[postID]; ok && p.LikesCount > 0 {
		p.LikesCount--
	}
	return true, nil
}

func (r *memPostRepo) IsLiked(_ context.Context, userID, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[likeKey(userID, postID)], nil
}

func (r *memPostRepo) GetLikedPostIDs(_ context.Context, userID string, postIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, id := range postIDs {
		if r.likes[likeKey(userID, id)] {
			out = append(out, id)
		}
	}
	return out, nil
}

// memCommentRepo is an in-memory repository.CommentRepository bound to a memPostRepo.
type memCommentRepo struct {
	posts    *memPostRepo
	comments []*models.Comment
	createFn func(context.Context, *models.Comment) error
}

func (r *memCommentRepo) Create(ctx context.Context, c *models.Comment) error {
	if r.createFn != nil {
		return r.createFn(ctx, c)
	}
	r.posts.mu.Lock()
	defer r.posts.mu.Unlock()
	p, ok := r.posts.posts[c.PostID]
	if !ok {
		return models.NewNotFoundError("Post", c.PostID)
	}
	p.CommentsCount++
	c.ID = fmt.Sprintf("c%d", len(r.comments)+1)
	c.CreatedAt = time.Now()
	r.comments = append(r.comments, c)
	return nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID string, limit, offset int) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	if offset >= len(out) {
		return []*models.Comment{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// memNotificationRepo is an in-memory repository.NotificationRepository.
type memNotificationRepo struct {
	mu    sync.Mutex
	items []*models.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = fmt.Sprintf("n%d", len(r.items)+1)
	n.CreatedAt = time.Now()
	r.items = append(r.items, n)
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.Read {
			it.Read = true
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id && it.UserID == userID {
			it.Read = true
			return nil
		}
	}
	return models.NewNotFoundError("Notification", id)
}

func (r *memNotificationRepo) HasActivity(_ context.Context, userID, actorID, postID string, action models.NotificationAction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.UserID == userID && it.Action == action &&
			derefString(it.ActorID) == actorID && derefString(it.PostID) == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) forUser(userID string) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out
}

// memProfileRepo is an in-memory repository.ProfileRepository.
type memProfileRepo struct {
	profiles map[string]*models.Profile
	saveErr  error
	saves    int
}

func newMemProfileRepo(profiles ...*models.Profile) *memProfileRepo {
	r := &memProfileRepo{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *memProfileRepo) Get(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) GetOrCreateDefault(ctx context.Context, userID string) (*models.Profile, error) {
	if _, ok := r.profiles[userID]; !ok {
		r.profiles[userID] = models.DefaultProfile(userID)
	}
	return r.Get(ctx, userID)
}

func (r *memProfileRepo) Save(_ context.Context, p *models.Profile) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *memProfileRepo) SetFirstVisit(_ context.Context, userID string, firstVisit bool) error {
	p, ok := r.profiles[userID]
	if !ok {
		return models.NewNotFoundError("Profile", userID)
	}
	p.FirstVisit = firstVisit
	return nil
}

func (r *memProfileRepo) SetAvatarURL(_ context.Context, userID, url string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return models.NewNotFoundError("Profile", userID)
	}
	p.AvatarURL = url
	return nil
}

// memVendorRepo is an in-memory repository.VendorRepository.
type memVendorRepo struct {
	profiles map[string]*models.VendorProfile
	items    []*models.InventoryItem
	nextID   uint
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{profiles: map[string]*models.VendorProfile{}}
}

func (r *memVendorRepo) GetProfile(_ context.Context, userID string) (*models.VendorProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("VendorProfile", userID)
	}
	cp := *p
	return &cp, nil
}

func (r *memVendorRepo) SaveProfile(_ context.Context, vp *models.VendorProfile, columns ...string) error {
	cur, ok := r.profiles[vp.UserID]
	if !ok {
		cp := *vp
		r.profiles[vp.UserID] = &cp
		return nil
	}
	for _, col := range columns {
		switch col {
		case "language":
			cur.Language = vp.Language
		case "path":
			cur.Path = vp.Path
		case "store_name":
			cur.StoreName = vp.StoreName
		case "store_type":
			cur.StoreType = vp.StoreType
		}
	}
	return nil
}

func (r *memVendorRepo) ListInventory(_ context.Context, userID string) ([]*models.InventoryItem, error) {
	var out []*models.InventoryItem
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memVendorRepo) AddInventory(_ context.Context, items ...*models.InventoryItem) error {
	for _, it := range items {
		r.nextID++
		it.ID = r.nextID
		r.items = append(r.items, it)
	}
	return nil
}

func (r *memVendorRepo) DeleteInventory(_ context.Context, userID string, id uint) error {
	for i, it := range r.items {
		if it.ID == id && it.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("InventoryItem", id)
}

// recordedEvent is one call captured by eventRecorder.
type recordedEvent struct {
	UserID  string
	Type    string
	Payload map[string]interface{}
}

// eventRecorder is an EventPublisher that keeps every event.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) PublishUserEvent(_ context.Context, userID, eventType string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (r *eventRecorder) PublishBroadcastEvent(_ context.Context, eventType string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload})
}

func (r *eventRecorder) ofType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// imageStoreStub is an ImageStore returning fixed URLs.
type imageStoreStub struct {
	saved []media.Upload
	err   error
}

func (s *imageStoreStub) SaveAvatar(_ context.Context, in media.Upload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, in)
	return "/media/avatars/" + in.OwnerID + ".webp", nil
}

func (s *imageStoreStub) SavePostImage(_ context.Context, in media.Upload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, in)
	return fmt.Sprintf("/media/posts/%d.webp", len(s.saved)), nil
}

// providerStub is an authproxy.Provider with canned answers.
type providerStub struct {
	signUpFn func(context.Context, string, string) (string, error)
	signInFn func(context.Context, string, string) (authproxy.Session, error)
	verifyFn func(context.Context, string) (string, error)
	revoked  []string
}

func (p *providerStub) SignUp(ctx context.Context, email, password string) (string, error) {
	return p.signUpFn(ctx, email, password)
}

func (p *providerStub) SignIn(ctx context.Context, email, password string) (authproxy.Session, error) {
	return p.signInFn(ctx, email, password)
}

func (p *providerStub) VerifySession(ctx context.Context, token string) (string, error) {
	return p.verifyFn(ctx, token)
}

// revokingProviderStub also implements authproxy.Revoker.
type revokingProviderStub struct {
	*providerStub
}

func (p *revokingProviderStub) Revoke(_ context.Context, token string) error {
	p.revoked = append(p.revoked, token)
	return nil
}

// docStoreStub is a docstore.Store backed by a map.
type docStoreStub struct {
	docs    map[string]models.DocUser
	saveErr error
}

func (d *docStoreStub) SaveUser(_ context.Context, uid string, doc models.DocUser) error {
	if d.saveErr != nil {
		return d.saveErr
	}
	if d.docs == nil {
		d.docs = map[string]models.DocUser{}
	}
	doc.UID = uid
	d.docs[uid] = doc
	return nil
}

func (d *docStoreStub) GetUser(_ context.Context, uid string) (*models.DocUser, error) {
	doc, ok := d.docs[uid]
	if !ok {
		return nil, errors.New("not found")
	}
	return &doc, nil
}

func (d *docStoreStub) Close(context.Context) error { return nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
