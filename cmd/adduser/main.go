// cmd/adduser/main.go
// Creates or updates a race officer or admin in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username rc -password testing -role officer
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ZeMendes2393/sailscore/config"
	bundb "github.com/ZeMendes2393/sailscore/db"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/service"
	"github.com/ZeMendes2393/sailscore/store"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	role := flag.String("role", models.RoleOfficer, "officer or admin")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}
	if *role != models.RoleOfficer && *role != models.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	user := &models.User{
		Username: *username,
		Password: hash,
		Role:     *role,
	}
	if err := store.New(db).CreateUser(context.Background(), nil, user); err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("user %q saved as %s\n", *username, *role)
}
