package main

import (
	"fmt"
	"log"
	"time"

	"github.com/oggyb/ridemate/internal/auth"
	"github.com/oggyb/ridemate/internal/config"
	"github.com/oggyb/ridemate/internal/db"
	"github.com/oggyb/ridemate/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg, logger.L())
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	now := time.Now().UTC()
	users, err := db.SeedTestData(database, now)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	// Print a ready-to-use bearer token per demo account.
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, time.Now)
	for _, u := range users {
		token, _, err := tokens.Issue(u.ID, u.Nickname)
		if err != nil {
			log.Fatalf("failed to issue token for %s: %v", u.Email, err)
		}
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%-22s %-6s %s\n", u.Email, role, token)
	}

	log.Printf("Seeding completed. Every account uses password %q.", db.SeedPassword)
}
