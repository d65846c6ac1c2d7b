package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/garnizeh/interviewdesk/db"
	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/db"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/internal/repository/sqlite"
	"github.com/garnizeh/interviewdesk/internal/templates"
)

func main() {
	seed := flag.String("seed", "", "email of a demo account to create with one draft interview")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if *seed != "" {
		if err := seedDemo(ctx, sqlite.New(database, nil), strings.ToLower(*seed)); err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Database initialized successfully.")
}

// seedDemo creates a demo account (password "demo") owning a draft built from
// every catalog template.
func seedDemo(ctx context.Context, repo *sqlite.SQLiteRepo, email string) error {
	existing, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := repo.CreateUser(ctx, &models.User{Email: email, Name: "Demo", PasswordHash: string(hash)}); err != nil {
			return err
		}
	}

	iv := models.NewInterview(email)
	iv.Title = "Demo interview"
	stored, err := repo.CreateInterview(ctx, iv)
	if err != nil {
		return err
	}
	var tasks []models.Task
	for _, tpl := range templates.Default().List() {
		t := tpl.NewTask()
		t.ClientRef = t.ID
		t.ID = ""
		t.Order = len(tasks)
		tasks = append(tasks, t)
	}
	if _, err := repo.UpsertTasks(ctx, stored.ID, tasks); err != nil {
		return err
	}
	fmt.Printf("Seeded %s with interview %s (%d tasks).\n", email, stored.ID, len(tasks))
	return nil
}
