// Package featureflags evaluates rollout flags configured through FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags consulted by the API.
const (
	// AICompletion gates the LLM completion proxy.
	AICompletion = "ai_completion"
	// LikeNotifications controls whether likes raise notifications (comments always do).
	LikeNotifications = "like_notifications"
	// AvatarUpload gates image avatars; colour avatars are always available.
	AvatarUpload = "avatar_upload"
)

// Defaults apply when FEATURE_FLAGS does not mention a flag.
var Defaults = map[string]string{
	AICompletion:      "on",
	LikeNotifications: "on",
	AvatarUpload:      "on",
}

// rule is a parsed flag value: a rollout percentage from 0 to 100.
type rule struct {
	raw     string
	percent int
}

func parseRule(raw string) rule {
	r := rule{raw: raw}
	switch raw {
	case "on", "true", "1":
		r.percent = 100
	case "off", "false", "0":
	default:
		if n, ok := strings.CutSuffix(raw, "%"); ok {
			if pct, err := strconv.Atoi(n); err == nil {
				r.percent = min(max(pct, 0), 100)
			}
		}
	}
	return r
}

// Manager evaluates flags given as a comma-separated name=value list, e.g.
// "ai_completion=on,avatar_upload=25%,like_notifications=off". Values are
// on/true/1, off/false/0 or a percentage; anything else reads as off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw over Defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{rules: make(map[string]rule, len(Defaults))}
	for name, value := range Defaults {
		m.rules[name] = parseRule(value)
	}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		name, value = normalize(name), normalize(value)
		if !ok || name == "" || value == "" {
			continue
		}
		m.rules[name] = parseRule(value)
	}
	return m
}

// Enabled evaluates name for userID. Partial rollouts bucket users by a hash
// of flag and uid, so a user's result is stable; anonymous callers are never
// inside a partial rollout.
func (m *Manager) Enabled(name, userID string) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == "":
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Raw returns the configured value of every flag.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every flag for userID.
func (m *Manager) Snapshot(userID string) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + userID))
	return int(h.Sum32() % 100)
}
