// seed inserts development sample users for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"booking-platform/auth/internal/config"
	"booking-platform/auth/internal/db"
	"booking-platform/auth/internal/security"
	userrepo "booking-platform/auth/internal/user/repository"
)

const (
	devUserEmail  = "dev@example.com"
	devAdminEmail = "admin@example.com"
	devPassword   = "password123!"
	devUserID     = "dev-user-001"
	devAdminID    = "dev-admin-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env == "production" {
		fmt.Fprintln(os.Stderr, "seed: refusing to run in production")
		os.Exit(1)
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(pool)
	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed: lookup dev user: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devUserEmail)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}

	now := time.Now().UTC()
	rows := []struct {
		id, email, name, role string
	}{
		{devUserID, devUserEmail, "Dev User", "user"},
		{devAdminID, devAdminEmail, "Dev Admin", "admin"},
	}
	for _, r := range rows {
		_, err := pool.ExecContext(ctx,
			`INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)
			 ON CONFLICT (email) DO NOTHING`,
			r.id, r.email, r.name, r.role, hash, now)
		if err != nil {
			log.Fatalf("seed: insert %s: %v", r.email, err)
		}
	}
	log.Printf("seed: created %s and %s (password %q)", devUserEmail, devAdminEmail, devPassword)
}
