package seed

import (
	"fmt"
	"time"

	"hackit/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Demo account created by the canonical seed.
const (
	DemoUserID   = "demo"
	DemoEmail    = "demo@hackit.dev"
	DemoPassword = "password123"
	DemoName     = "Demo User"
)

const placeholderImage = "/images/placeholder.jpg"

type canonicalPost struct {
	id       string
	author   string
	title    string
	age      time.Duration
	content  string
	likes    int
	comments int
	color    string
	images   int
}

type canonicalComment struct {
	id      string
	author  string
	content string
	age     time.Duration
	color   string
	likes   int
}

type canonicalNotification struct {
	id        string
	actor     string
	color     string
	action    models.NotificationAction
	postTitle string
	age       time.Duration
	read      bool
}

var canonicalPosts = []canonicalPost{
	{
		id: "1", author: "Aisha Khan", title: "Founder, A-List Digital", age: 2 * time.Hour,
		content: "Just wrapped up a deep dive into our Q3 analytics.\n\n" +
			"The data confirms that shifting our ad spend from broad-stroke campaigns to hyper-targeted micro-influencer collaborations has yielded a 150% increase in engagement. " +
			"For fellow B2C founders, don't underestimate the power of a niche audience. Authenticity is our most valuable currency!",
		likes: 102, comments: 23, color: "#9D4EDD", images: 1,
	},
	{
		id: "2", author: "Priya Sharma", title: "CEO, Innovate & Scale", age: 8 * time.Hour,
		content: "Scaling a startup is a marathon, not a sprint. This week, we focused on refining our operational workflows to eliminate bottlenecks before our next growth phase.\n\n" +
			"We implemented a new project management system that integrates directly with our CRM. The goal? To ensure our client-facing teams have real-time data access, reducing response times by an anticipated 30%.\n\n" +
			"Remember, a strong internal foundation is what makes external growth sustainable. We're building a skyscraper, not a house of cards.",
		likes: 256, comments: 41, color: "#FF4444",
	},
	{
		id: "3", author: "Isabella Rossi", title: "Creative Director, Rossi & Co.", age: 24 * time.Hour,
		content: "Creativity in business isn't just about a beautiful logo; it's about strategic storytelling.\n\n" +
			"We just launched a campaign for a sustainable fashion brand that centers the entire narrative around the lifecycle of a single garment—from the organic farm to the customer's closet. " +
			"This approach doesn't just sell a product; it sells a philosophy. It connects with consumers on an emotional level, turning them from customers into brand evangelists.\n\n" +
			"Think beyond the transaction, and focus on the transformation.",
		likes: 412, comments: 89, color: "#FFB800", images: 2,
	},
	{
		id: "4", author: "Elena Petrova", title: "Partner, Catalyst Ventures", age: 48 * time.Hour,
		content: "I review hundreds of pitches a month, and the ones that stand out always nail three things: a massive addressable market, a clear 'why now,' and an unshakable team. " +
			"It's not just about a good idea; it's about executing that idea at the right moment in history.\n\n" +
			"We often see founders get bogged down in the tech without clearly articulating the problem they're solving for a specific customer segment. Your pitch should tell a story. " +
			"Who is your hero (the customer)? What is their dragon (the problem)? And how does your product act as the magic sword? " +
			"Make it compelling, make it data-driven, but most importantly, make us believe in your mission.",
		likes: 830, comments: 152, color: "#00C49F",
	},
	{
		id: "5", author: "Samantha Chen", title: "Head of Product, Connectify", age: 72 * time.Hour,
		content: "Building a product roadmap is an art and a science. The science is the data: user analytics, support tickets, and A/B test results. " +
			"The art is the intuition: understanding the market, anticipating future needs, and having a strong vision for where the product is headed.\n\n" +
			"One of our biggest challenges was balancing feature requests from our largest enterprise clients with the needs of our broader user base. " +
			"We created a 'Weighted Scoring' model that factors in strategic alignment, development effort, and potential impact. " +
			"It's not a perfect system, but it brings objectivity to a subjective process and helps us justify our decisions to stakeholders. " +
			"It forces us to ask, 'Does this move the needle on our core KPIs?' instead of just, 'Who is asking for this?'",
		likes: 315, comments: 68, color: "#0088FE", images: 1,
	},
}

var canonicalComments = []canonicalComment{
	{id: "1", author: "Sarah Johnson", content: "This is such great content! Thanks for sharing.", age: 2 * time.Hour, color: "#FFB6C1", likes: 5},
	{id: "2", author: "Emma Wilson", content: "I love this perspective! Very insightful.", age: 4 * time.Hour, color: "#87CEEB", likes: 3},
	{id: "3", author: "Chloe Martinez", content: "Amazing work! Keep it up!", age: 6 * time.Hour, color: "#DDA0DD", likes: 8},
}

var canonicalNotifications = []canonicalNotification{
	{id: "1", actor: "Clair M. Obscur", color: "#FF4444", action: models.NotificationCommented, postTitle: "Verso parry it...", age: time.Hour},
	{id: "2", actor: "Jane Doe", color: "#ADFF2F", action: models.NotificationCommented, postTitle: "Very insightful post, Placehold...", age: 2 * time.Hour},
	{id: "3", actor: "Supa Maria", color: "#F7C5C5", action: models.NotificationLiked, postTitle: "Lorem ipsum dolor sit amet....", age: 48 * time.Hour, read: true},
	{id: "4", actor: "Supa Maria", color: "#F7C5C5", action: models.NotificationLiked, postTitle: "Lorem ipsum dolor sit amet....", age: 48 * time.Hour, read: true},
}

// demoLikes are the canonical posts the demo user has liked.
var demoLikes = []string{"2", "5"}

// canonicalNow anchors seeded timestamps; replaced in tests.
var canonicalNow = time.Now

// Canonical writes the demo feed. Rows already present are left alone, so the
// run is safe to repeat.
func (s *Seeder) Canonical() (Report, error) {
	now := canonicalNow()
	report := Report{
		Users:         1,
		Posts:         len(canonicalPosts),
		Comments:      len(canonicalComments),
		Likes:         len(demoLikes),
		Notifications: len(canonicalNotifications),
	}
	if s.opts.DryRun {
		return report, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return report, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})

		if err := skip.Create(&models.User{ID: DemoUserID, Email: DemoEmail, Name: DemoName, PasswordHash: string(hash)}).Error; err != nil {
			return fmt.Errorf("demo user: %w", err)
		}
		if err := skip.Create(models.DefaultProfile(DemoUserID)).Error; err != nil {
			return fmt.Errorf("demo profile: %w", err)
		}

		for _, p := range canonicalPosts {
			var existing int64
			if err := tx.Model(&models.Post{}).Where("id = ?", p.id).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			if err := tx.Create(p.model(now)).Error; err != nil {
				return fmt.Errorf("post %s: %w", p.id, err)
			}
		}
		for _, c := range canonicalComments {
			comment := &models.Comment{
				ID:           c.id,
				PostID:       canonicalPosts[0].id,
				AuthorName:   c.author,
				ProfileColor: c.color,
				Content:      c.content,
				LikesCount:   c.likes,
				CreatedAt:    now.Add(-c.age),
			}
			if err := skip.Create(comment).Error; err != nil {
				return fmt.Errorf("comment %s: %w", c.id, err)
			}
		}
		for _, postID := range demoLikes {
			if err := skip.Create(&models.Like{UserID: DemoUserID, PostID: postID, CreatedAt: now}).Error; err != nil {
				return fmt.Errorf("like %s: %w", postID, err)
			}
		}
		for _, n := range canonicalNotifications {
			notification := &models.Notification{
				ID:         n.id,
				UserID:     DemoUserID,
				ActorName:  n.actor,
				ActorColor: n.color,
				Action:     n.action,
				PostTitle:  n.postTitle,
				Read:       n.read,
				CreatedAt:  now.Add(-n.age),
			}
			if err := skip.Create(notification).Error; err != nil {
				return fmt.Errorf("notification %s: %w", n.id, err)
			}
		}
		return nil
	})
	return report, err
}

func (p canonicalPost) model(now time.Time) *models.Post {
	post := &models.Post{
		ID:            p.id,
		AuthorName:    p.author,
		AuthorTitle:   p.title,
		ProfileColor:  p.color,
		Content:       p.content,
		LikesCount:    p.likes,
		CommentsCount: p.comments,
		CreatedAt:     now.Add(-p.age),
	}
	for i := 0; i < p.images; i++ {
		post.Images = append(post.Images, models.PostImage{Position: i, URL: placeholderImage})
	}
	return post
}
