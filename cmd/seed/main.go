// Command main wipes the configured store and loads sample data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/bootstrap"
	"github.com/austinzumbro/nosql-social-api/internal/config"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	extraUsers := flag.Int("users", 0, "Number of generated users to add on top of the fixtures")
	thoughtsPerUser := flag.Int("thoughts", 3, "Thoughts written by each generated user")
	shouldClean := flag.Bool("clean", true, "Wipe users and thoughts before seeding")
	fakerSeed := flag.Int64("seed", 0, "Seed for generated data (0 = random)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env: %v", err)
	}

	opts := seed.Options{
		Clean:           *shouldClean,
		ExtraUsers:      *extraUsers,
		ThoughtsPerUser: *thoughtsPerUser,
		Seed:            *fakerSeed,
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts seed.Options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	observability.Configure(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer rt.Close(context.Background())

	sum, err := seed.NewSeeder(rt.UserService, rt.ThoughtService, rt.Maintenance).Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Printf("Seeded %d users, %d thoughts, %d reactions, %d friendships",
		sum.Users, sum.Thoughts, sum.Reactions, sum.Friends)
	return nil
}
