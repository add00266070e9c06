package repository

import (
	"context"

	"hackit/internal/cache"
	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository stores the editable profile card of each user.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// GetOrCreateDefault returns the stored profile, inserting the placeholder profile first if none exists.
	GetOrCreateDefault(ctx context.Context, userID string) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
	SetFirstVisit(ctx context.Context, userID string, firstVisit bool) error
	SetAvatarURL(ctx context.Context, userID, url string) error
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles")}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Profile", userID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetOrCreateDefault(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := r.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if appErr, ok := models.AsAppError(err); !ok || appErr.Code != models.CodeNotFound {
		return nil, err
	}

	profile = models.DefaultProfile(userID)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "create_default")
		return nil, models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "user_id", userID, "default", true)

	// A concurrent request may have won the insert; read back the stored row.
	var stored models.Profile
	if err := r.db.WithContext(ctx).First(&stored, "user_id = ?", userID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stored, nil
}

// Save replaces the profile wholesale.
func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "business_position", "location", "avatar_color", "avatar_url", "website", "first_visit", "updated_at"}),
		}).
		Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "save")
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	r.log.LogUpdate(ctx, "user_id", profile.UserID)
	return nil
}

func (r *profileRepository) SetFirstVisit(ctx context.Context, userID string, firstVisit bool) error {
	return r.updateColumn(ctx, userID, "first_visit", firstVisit)
}

func (r *profileRepository) SetAvatarURL(ctx context.Context, userID, url string) error {
	return r.updateColumn(ctx, userID, "avatar_url", url)
}

func (r *profileRepository) updateColumn(ctx context.Context, userID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update_"+column)
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", userID)
	}
	cache.InvalidateProfile(ctx, userID)
	return nil
}
