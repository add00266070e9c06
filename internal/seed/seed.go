// Package seed populates the database with the demo feed and optional fake
// data for development and testing.
package seed

import (
	"fmt"
	"log"

	"hackit/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	// FakePosts adds that many gofakeit posts by fake authors.
	FakePosts int
	// FakeUsers is the number of fake authors; defaults to FakePosts/4 (at least 1).
	FakeUsers int
	// MaxDays spreads fake post timestamps over the past N days.
	MaxDays int
	// Clean deletes existing feed data first.
	Clean bool
	// DryRun builds everything without writing.
	DryRun bool
	// SkipBcrypt stores fake user passwords unhashed for fast local runs.
	SkipBcrypt bool
}

// Report counts what a run wrote (or would have written in dry-run mode).
type Report struct {
	Users         int
	Posts         int
	Comments      int
	Likes         int
	Notifications int
}

func (r Report) String() string {
	return fmt.Sprintf("users=%d posts=%d comments=%d likes=%d notifications=%d",
		r.Users, r.Posts, r.Comments, r.Likes, r.Notifications)
}

// Seeder runs the canonical and fake seeders against one database.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a seeder. db may be nil in dry-run mode.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Run seeds the canonical feed, then the requested fake data.
func (s *Seeder) Run() (Report, error) {
	var report Report

	if s.opts.Clean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return report, fmt.Errorf("clear: %w", err)
		}
	}

	canonical, err := s.Canonical()
	if err != nil {
		return report, fmt.Errorf("canonical seed: %w", err)
	}
	report = canonical

	if s.opts.FakePosts > 0 {
		fake, err := s.Fake(s.opts.FakePosts)
		if err != nil {
			return report, fmt.Errorf("fake seed: %w", err)
		}
		report.Users += fake.Users
		report.Posts += fake.Posts
		report.Comments += fake.Comments
		report.Likes += fake.Likes
	}

	log.Printf("seed complete (dry_run=%v): %s", s.opts.DryRun, report)
	return report, nil
}

// ClearAll deletes feed, onboarding and account rows, children first.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Notification{},
		&models.Comment{},
		&models.Like{},
		&models.PostImage{},
		&models.Post{},
		&models.InventoryItem{},
		&models.VendorProfile{},
		&models.Profile{},
		&models.DocUser{},
		&models.User{},
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Fake adds n gofakeit posts with a sprinkling of comments and likes.
func (s *Seeder) Fake(n int) (Report, error) {
	var report Report

	numUsers := s.opts.FakeUsers
	if numUsers <= 0 {
		numUsers = n / 4
	}
	if numUsers < 1 {
		numUsers = 1
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return report, err
		}
		users = append(users, u)
	}
	report.Users = len(users)

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, s.factory.BuildPost(users[s.factory.Intn(len(users))]))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return report, err
	}
	report.Posts = len(posts)

	for _, post := range posts {
		for c := s.factory.Intn(3); c > 0; c-- {
			if _, err := s.factory.CreateComment(users[s.factory.Intn(len(users))], post); err != nil {
				return report, err
			}
			report.Comments++
		}
		fan := users[s.factory.Intn(len(users))]
		if post.UserID != nil && *post.UserID != fan.ID {
			if err := s.factory.CreateLike(fan, post); err != nil {
				return report, err
			}
			report.Likes++
		}
	}
	return report, nil
}
