package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"agenda/internal/config"
	"agenda/internal/logger"
	"agenda/internal/server"
	"agenda/internal/version"
)

const usage = "Usage: agenda <ensure-admin|indexes|version>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg := config.New()

	switch os.Args[1] {
	case "ensure-admin":
		aCmd := flag.NewFlagSet("ensure-admin", flag.ExitOnError)
		email := aCmd.String("email", cfg.Admin.Email, "Admin email")
		password := aCmd.String("password", cfg.Admin.Password, "Admin password")
		_ = aCmd.Parse(os.Args[2:])

		if *email == "" || *password == "" {
			log.Fatal("--email and --password must not be empty")
		}
		cfg.Admin.Email = *email
		cfg.Admin.Password = *password

		withStore(cfg, func(ctx context.Context, repos *server.Repositories, s *server.Services) error {
			created, err := s.Users.EnsureAdmin(ctx)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf(">> Admin %s created\n", *email)
			} else {
				fmt.Printf(">> Account %s already exists, left unchanged\n", *email)
			}
			return nil
		})

	case "indexes":
		withStore(cfg, func(ctx context.Context, repos *server.Repositories, _ *server.Services) error {
			if err := repos.Users.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("users: %w", err)
			}
			if err := repos.Contacts.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("contacts: %w", err)
			}
			fmt.Println(">> Indexes ensured")
			return nil
		})

	case "version":
		fmt.Println("agenda", version.Get())

	default:
		log.Fatal(usage)
	}
}

// withStore connects to MongoDB, runs fn and disconnects.
func withStore(cfg *config.Config, fn func(context.Context, *server.Repositories, *server.Services) error) {
	slogger := logger.New(cfg.LogLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.Mongo.Timeout+10*time.Second)
	defer cancel()

	client, err := server.Connect(ctx, cfg, slogger)
	if err != nil {
		log.Fatalf("MongoDB error: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repos := server.InitRepositories(cfg, client.Database(cfg.Mongo.Database))
	services := server.InitServices(cfg, slogger, repos)
	if err := fn(ctx, repos, services); err != nil {
		_ = client.Disconnect(context.Background())
		log.Fatalf("Error: %v", err)
	}
}
