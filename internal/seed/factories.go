package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"hackit/internal/models"
	"hackit/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const fakePassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// Intn returns a pseudo-random number in [0, n).
func (f *Factory) Intn(n int) int {
	return f.rng.Intn(n)
}

func (f *Factory) syntheticID() string {
	f.nextID++
	return fmt.Sprintf("dry-%d", f.nextID)
}

func (f *Factory) color() string {
	return validation.AvatarPalette[f.rng.Intn(len(validation.AvatarPalette))]
}

// CreateUser constructs and persists a sample user together with a completed
// profile. Optional overrides may modify the user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ID:    gofakeit.UUID(),
		Email: gofakeit.Email(),
		Name:  gofakeit.Name(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.PasswordHash = fakePassword
	} else {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(fakePassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	profile := &models.Profile{
		UserID:           user.ID,
		Name:             user.Name,
		BusinessPosition: gofakeit.JobTitle() + ", " + gofakeit.Company(),
		Location:         gofakeit.City(),
		AvatarColor:      f.color(),
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		log.Printf("[dry-run] CreateUser: id=%s name=%q", user.ID, user.Name)
		return user, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by user without persisting it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	uid := user.ID
	post := &models.Post{
		ID:           gofakeit.UUID(),
		UserID:       &uid,
		AuthorName:   user.Name,
		AuthorTitle:  gofakeit.JobTitle() + ", " + gofakeit.Company(),
		ProfileColor: f.color(),
		Content:      gofakeit.Paragraph(1+f.rng.Intn(3), 3, 8, "\n\n"),
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for i := f.rng.Intn(3); i > 0; i-- {
		post.Images = append(post.Images, models.PostImage{
			Position: len(post.Images),
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		})
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.syntheticID()
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a sample comment on post by user and
// bumps the post's comment counter.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	uid := user.ID
	comment := &models.Comment{
		ID:           gofakeit.UUID(),
		PostID:       post.ID,
		UserID:       &uid,
		AuthorName:   user.Name,
		ProfileColor: f.color(),
		Content:      gofakeit.Sentence(8),
		CreatedAt:    post.CreatedAt.Add(time.Duration(1+f.rng.Intn(120)) * time.Minute),
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.syntheticID()
		post.CommentsCount++
		return comment, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	post.CommentsCount++
	return comment, nil
}

// CreateLike persists a like from user on post and bumps its like counter.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		post.LikesCount++
		return nil
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return err
	}
	post.LikesCount++
	return nil
}
