package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/wallspace/wallspace-api/internal/config"
	"github.com/wallspace/wallspace-api/internal/domain/auth"
	"github.com/wallspace/wallspace-api/internal/domain/user"
	"github.com/wallspace/wallspace-api/internal/pkg/database"
	"github.com/wallspace/wallspace-api/internal/pkg/jwt"
	"github.com/wallspace/wallspace-api/internal/pkg/password"
)

// debug_login prints users and schema, checks a password and mints tokens
// for a seeded account so endpoints can be exercised with curl.
func main() {
	email := flag.String("email", "artist@test.com", "user to log in as")
	pwd := flag.String("password", "", "optional password to verify against the stored hash")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, refresh token will only live in this process: %v", err)
		rdb = nil
	}
	defer database.CloseRedis(rdb)

	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id, email, role, email_verified FROM users ORDER BY created_at`)
	if err != nil {
		log.Fatalf("Failed to query users: %v", err)
	}
	fmt.Println("--- Users ---")
	count := 0
	for rows.Next() {
		var id, mail, role string
		var verified bool
		if err := rows.Scan(&id, &mail, &role, &verified); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		fmt.Printf("%s | %s | %s | verified: %v\n", id, mail, role, verified)
		count++
	}
	rows.Close()
	fmt.Printf("Total users: %d\n", count)

	fmt.Println("--- Booking columns ---")
	cols, err := db.QueryContext(ctx, `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = 'bookings' ORDER BY ordinal_position`)
	if err != nil {
		log.Printf("Failed to query bookings columns: %v", err)
	} else {
		for cols.Next() {
			var name, typ string
			if err := cols.Scan(&name, &typ); err == nil {
				fmt.Printf("%s (%s)\n", name, typ)
			}
		}
		cols.Close()
	}

	repo := user.NewRepository(db)
	u, err := repo.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("GetByEmail %s: %v", *email, err)
	}
	if u == nil {
		log.Fatalf("User %s not found", *email)
	}
	fmt.Printf("User found: %s (%s)\n", u.ID, u.Role)

	if *pwd != "" {
		if u.PasswordHash == "" {
			fmt.Println("WARNING: user has no password, social sign-in only")
		} else if password.Verify(*pwd, u.PasswordHash) {
			fmt.Println("Password matches.")
		} else {
			generated, err := password.Hash(*pwd)
			if err != nil {
				log.Fatalf("Failed to hash password: %v", err)
			}
			fmt.Println("HASH MISMATCH. Hash for the given password:")
			fmt.Println(generated)
		}
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	svc := auth.NewService(repo, jwtService, auth.NewTokenStore(rdb), nil)
	resp, err := svc.IssueTokens(ctx, u)
	if err != nil {
		log.Fatalf("IssueTokens: %v", err)
	}

	fmt.Println("--- Tokens ---")
	fmt.Printf("Authorization: %s %s\n", resp.Tokens.TokenType, resp.Tokens.AccessToken)
	fmt.Printf("refresh_token: %s\n", resp.Tokens.RefreshToken)
	fmt.Printf("expires_in: %ds\n", resp.Tokens.ExpiresIn)
}
