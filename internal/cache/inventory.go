package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix   = "profile:%s"
	PostKeyPrefix      = "post:%s"
	PostsListVersion   = "posts:list:version"
	PostsListKeyPrefix = "posts:list:v%d:%d:%d"
	WSTicketKeyPrefix  = "ws_ticket:%s"
	BlacklistKeyPrefix = "blacklist:%s"
	FirebaseCertsKey   = "firebase:certs"
)

const (
	ProfileTTL  = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	ListTTL     = 30 * time.Second
	WSTicketTTL = 60 * time.Second
)

func ProfileKey(userID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

// PostsListKey returns the anonymous feed page key under the current list version.
// Bumping the version invalidates every cached page at once.
func PostsListKey(ctx context.Context, limit, offset int) string {
	var version int64
	if client != nil {
		if v, err := client.Get(ctx, PostsListVersion).Int64(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf(PostsListKeyPrefix, version, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, userID string) {
	Invalidate(ctx, ProfileKey(userID))
}

// InvalidatePost drops the cached post and every anonymous feed page that may embed it.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
	InvalidatePostsList(ctx)
}

func InvalidatePostsList(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, PostsListVersion)
	}
}
