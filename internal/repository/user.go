package repository

import (
	"context"
	"strings"

	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
	// SetRole reports changed=false when the user already held role.
	SetRole(ctx context.Context, id, role string) (user *models.User, changed bool, err error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address. It reads the
// primary so a sign-in right after sign-up sees the new row.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "user_id", user.ID)
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *userRepository) SetRole(ctx context.Context, id, role string) (*models.User, bool, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, false, models.NewNotFoundError("User", id)
		}
		return nil, false, models.NewInternalError(err)
	}
	if user.Role == role {
		return &user, false, nil
	}
	if err := r.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		r.log.LogError(ctx, err, "set_role")
		return nil, false, models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, "user_id", id, "role", role)
	return &user, true, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).Where("role = ?", role).Order("email").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
