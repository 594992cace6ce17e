package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-directory/config"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
	pginfra "github.com/oksasatya/user-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/user-directory/internal/infrastructure/sqlite"
	"github.com/oksasatya/user-directory/pkg/helpers"
)

// Seeds a few demo users and follow edges. Safe to re-run: duplicates are
// skipped.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()

	var store repository.UserRepository
	if cfg.DBDriver == "sqlite" {
		st, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			log.Fatalf("failed to open sqlite store: %v", err)
		}
		store = st
	} else {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		store = pginfra.NewUserRepository(pool, logger)
	}
	defer func() { _ = store.Close() }()

	users := []*entity.User{
		{Name: "Alice Demo", Email: "alice@example.com", Phone: "+15550100", DateOfBirth: "1992-04-11"},
		{Name: "Bob Demo", Email: "bob@example.com", Phone: "+15550101", DateOfBirth: "1988-11-02"},
		{Name: "Carol Demo", Email: "carol@example.com", Phone: "+15550102", DateOfBirth: "2000-06-15"},
	}
	for _, u := range users {
		if err := store.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				fmt.Printf("skipping %s: already seeded\n", u.Email)
				continue
			}
			log.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s\n", u.ID, u.Email)
	}

	edges := [][2]int{{0, 1}, {1, 0}, {2, 0}}
	for _, e := range edges {
		follower, target := users[e[0]], users[e[1]]
		if follower.ID == "" || target.ID == "" {
			continue
		}
		if err := store.Follow(ctx, follower.ID, target.ID); err != nil {
			if errors.Is(err, repository.ErrAlreadyFollowing) {
				continue
			}
			log.Fatalf("failed to seed follow edge: %v", err)
		}
		fmt.Printf("seeded follow: %s -> %s\n", follower.Email, target.Email)
	}
}
