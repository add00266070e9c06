// Package feed holds the presentation rules shared by every feed surface:
// content truncation, image capping and relative time labels.
package feed

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Viewport selects the truncation threshold.
type Viewport string

const (
	ViewportWide   Viewport = "wide"
	ViewportNarrow Viewport = "narrow"
)

const (
	// WideThreshold applies on desktop and in the post detail view.
	WideThreshold = 280
	// NarrowThreshold applies on viewports 768px wide or less.
	NarrowThreshold = 150
	// NarrowMaxWidth is the widest viewport, in CSS pixels, that counts as narrow.
	NarrowMaxWidth = 768
	// MaxDisplayedImages caps the images rendered in a feed card.
	MaxDisplayedImages = 4
	// Ellipsis is appended to truncated content.
	Ellipsis = "..."
)

// ParseViewport maps a query value to a Viewport. Numeric widths are accepted.
func ParseViewport(v string) Viewport {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case string(ViewportNarrow), "mobile":
		return ViewportNarrow
	case "", string(ViewportWide), "desktop":
		return ViewportWide
	}
	var width int
	if _, err := fmt.Sscanf(v, "%d", &width); err == nil && width > 0 && width <= NarrowMaxWidth {
		return ViewportNarrow
	}
	return ViewportWide
}

// Threshold returns the truncation threshold for the viewport.
func (v Viewport) Threshold() int {
	if v == ViewportNarrow {
		return NarrowThreshold
	}
	return WideThreshold
}

// Excerpt is the collapsed rendering of a post body.
type Excerpt struct {
	Text   string `json:"excerpt"`
	IsLong bool   `json:"is_long"`
}

// IsLong reports whether content exceeds threshold characters.
func IsLong(content string, threshold int) bool {
	return utf8.RuneCountInString(content) > threshold
}

// Render returns the text to display. Long content is cut to threshold characters
// plus Ellipsis unless expanded; short content is returned as-is either way.
func Render(content string, threshold int, expanded bool) string {
	if expanded || !IsLong(content, threshold) {
		return content
	}
	runes := []rune(content)
	return string(runes[:threshold]) + Ellipsis
}

// Truncate builds the collapsed excerpt for content.
func Truncate(content string, threshold int) Excerpt {
	return Excerpt{
		Text:   Render(content, threshold, false),
		IsLong: IsLong(content, threshold),
	}
}

// DisplayImages returns at most MaxDisplayedImages references, preserving order.
func DisplayImages(images []string) []string {
	if len(images) <= MaxDisplayedImages {
		return images
	}
	return images[:MaxDisplayedImages]
}

// Title shortens content into a one-line notification title.
func Title(content string, limit int) string {
	flat := strings.Join(strings.Fields(content), " ")
	return Render(flat, limit, false)
}

// TimeAgo renders t relative to now the way feed cards print it.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Format("Jan 2, 2006")
	}
}
