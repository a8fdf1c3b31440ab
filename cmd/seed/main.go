package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/internal/database"
	"github.com/Avinkovic23/local-llm-project/utils"
)

// Seeds the admin account used for PDF uploads. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	users, err := database.Open(cfg.UsersDBPath)
	if err != nil {
		log.Fatalf("Failed to open users database: %v", err)
	}
	defer users.Close()

	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "admin"
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal("SEED_PASSWORD environment variable is required")
	}

	ctx := context.Background()

	existing, err := users.GetUserByUsername(ctx, username)
	if err == nil {
		fmt.Printf("User %q already exists (role %s)\n", existing.Username, existing.Role)
		return
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		log.Fatalf("Failed to look up user: %v", err)
	}

	hash, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := users.CreateUser(ctx, username, hash, "admin")
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Created admin user %q (id %d)\n", user.Username, user.ID)
}
