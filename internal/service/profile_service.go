package service

import (
	"context"
	"errors"

	"hackit/internal/media"
	"hackit/internal/models"
	"hackit/internal/repository"
	"hackit/internal/validation"
)

type ProfileService struct {
	repo   repository.ProfileRepository
	images ImageStore
}

func NewProfileService(repo repository.ProfileRepository, images ImageStore) *ProfileService {
	return &ProfileService{repo: repo, images: images}
}

// GetProfile returns the caller's profile, creating the placeholder on first visit.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repo.GetOrCreateDefault(ctx, userID)
}

// GetPublicProfile returns another user's saved profile.
func (s *ProfileService) GetPublicProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repo.Get(ctx, userID)
}

// SaveProfile validates the edit form and replaces the stored profile with it.
// Missing required fields yield a *validation.ProfileError and leave the
// stored profile untouched.
func (s *ProfileService) SaveProfile(ctx context.Context, userID string, in validation.ProfileFields) (*models.Profile, error) {
	fields, err := validation.NormalizeProfile(in)
	if err != nil {
		var colorErr *validation.ColorError
		if errors.As(err, &colorErr) {
			return nil, models.NewValidationError(colorErr.Error())
		}
		return nil, err
	}

	current, err := s.repo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	color := fields.AvatarColor
	if color == "" {
		color = current.AvatarColor
	}
	updated := &models.Profile{
		UserID:           userID,
		Name:             fields.Name,
		BusinessPosition: fields.BusinessPosition,
		Location:         fields.Location,
		AvatarColor:      color,
		AvatarURL:        current.AvatarURL,
		Website:          fields.Website,
		FirstVisit:       false,
		CreatedAt:        current.CreatedAt,
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Skip leaves first-visit edit mode without changing the profile.
func (s *ProfileService) Skip(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.FirstVisit {
		return profile, nil
	}
	if err := s.repo.SetFirstVisit(ctx, userID, false); err != nil {
		return nil, err
	}
	profile.FirstVisit = false
	return profile, nil
}

// UploadAvatar stores a data-URL image as the caller's avatar.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, dataURL string) (*models.Profile, error) {
	if s.images == nil {
		return nil, models.NewValidationError("Image uploads are not available")
	}
	content, contentType, err := media.DecodeDataURL(dataURL)
	if err != nil {
		return nil, models.NewValidationError("Invalid image data")
	}
	profile, err := s.repo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.images.SaveAvatar(ctx, media.Upload{
		OwnerID:     userID,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAvatarURL(ctx, userID, url); err != nil {
		return nil, err
	}
	profile.AvatarURL = url
	return profile, nil
}

// RemoveAvatar clears the avatar image so clients fall back to the colour.
func (s *ProfileService) RemoveAvatar(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.AvatarURL == "" {
		return profile, nil
	}
	if err := s.repo.SetAvatarURL(ctx, userID, ""); err != nil {
		return nil, err
	}
	profile.AvatarURL = ""
	return profile, nil
}

// Palette returns the selectable avatar colours.
func (s *ProfileService) Palette() []string {
	out := make([]string, len(validation.AvatarPalette))
	copy(out, validation.AvatarPalette)
	return out
}
