// Command main runs the database seeder for hackit.
package main

import (
	"context"
	"flag"
	"log"

	"hackit/internal/bootstrap"
	"hackit/internal/config"
	"hackit/internal/seed"
)

func main() {
	// Parse command line flags
	fake := flag.Int("fake", 0, "Number of gofakeit posts to add after the demo feed")
	fakeUsers := flag.Int("fake-users", 0, "Number of fake authors (default fake/4)")
	maxDays := flag.Int("max-days", 30, "Spread fake posts over the past N days")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Report what would be written without touching the database")
	fast := flag.Bool("fast", false, "Skip bcrypt for fake users")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: demo feed + %d fake posts, clean=%v, dry_run=%v\n", *fake, *shouldClean, *dryRun)

	opts := seed.Options{
		FakePosts:  *fake,
		FakeUsers:  *fakeUsers,
		MaxDays:    *maxDays,
		Clean:      *shouldClean,
		DryRun:     *dryRun,
		SkipBcrypt: *fast,
	}

	if *dryRun {
		report, err := seed.NewSeeder(nil, opts).Run()
		if err != nil {
			log.Fatalf("❌ Dry run failed: %v", err)
		}
		log.Printf("Dry run: would write %s", report)
		return
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	if _, err := seed.NewSeeder(rt.DB, opts).Run(); err != nil {
		_ = rt.Close(ctx)
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	log.Printf("📧 Demo login: %s / %s", seed.DemoEmail, seed.DemoPassword)
}
