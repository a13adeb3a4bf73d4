package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/pkg/config"
	"github.com/Skotchmaster/medical_shop/pkg/hash"
)

const uniqueViolation = "23505"

var errEmailTaken = errors.New("email already registered")

func main() {
	email := flag.String("email", "admin@medicalshop.com", "admin email")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Site Administrator", "admin display name")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -password <pw> [-email <email>] [-name <name>]")
		os.Exit(2)
	}

	cfg := config.Load()
	cfg.MustRequire("DATABASE_URL")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := createAdmin(ctx, db, strings.TrimSpace(*name), strings.TrimSpace(*email), *password)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			log.Fatalf("admin not created: %s is already registered", *email)
		}
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin created: id=%s email=%s", id, *email)
}

func createAdmin(ctx context.Context, db *sql.DB, name, email, password string) (uuid.UUID, error) {
	pw, err := hash.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, email, pw, models.RoleAdmin, time.Now().UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return uuid.Nil, errEmailTaken
		}
		return uuid.Nil, fmt.Errorf("insert admin: %w", err)
	}
	return id, nil
}
