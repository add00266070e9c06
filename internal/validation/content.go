package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxPostLength    = 10000
	MaxCommentLength = 10000
	MaxPostImages    = 10
)

var (
	ErrEmptyPost      = errors.New("Post must have text or at least one image")
	ErrPostTooLong    = errors.New("Post content is too long")
	ErrTooManyImages  = errors.New("Too many images")
	ErrEmptyComment   = errors.New("Comment content is required")
	ErrCommentTooLong = errors.New("Comment content is too long")
)

// PostContent trims content and checks that the post has text or images.
func PostContent(content string, imageCount int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" && imageCount == 0 {
		return "", ErrEmptyPost
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return "", ErrPostTooLong
	}
	if imageCount > MaxPostImages {
		return "", ErrTooManyImages
	}
	return content, nil
}

// CommentContent trims content and rejects blank or oversized comments.
func CommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return content, nil
}
