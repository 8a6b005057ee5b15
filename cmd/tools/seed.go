package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"

	"github.com/Alex-SA1/Efficient-Study-Platform/auth"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

// Local development seeding: a handful of accounts and the friendships
// between them, so the join predicate has a graph to evaluate against.
// Account registration itself belongs to the account collaborator.

type seedUser struct {
	username string
	country  string
	password string
}

var users = []seedUser{
	{"alice", "France", "Correct-Horse-42!"},
	{"bob", "Germany", "Correct-Horse-42!"},
	{"chloe", "United Kingdom", "Correct-Horse-42!"},
	{"dmitri", "Ukraine", "Correct-Horse-42!"},
	{"elena", "Spain", "Correct-Horse-42!"},
}

// pairs of usernames that are connected; dmitri stays isolated on purpose
// so access-denied paths can be exercised by hand.
var friendships = [][2]string{
	{"alice", "bob"},
	{"alice", "chloe"},
	{"bob", "elena"},
}

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	userRepo := repositories.NewUserRepository(db)
	friendRepo := repositories.NewFriendshipRepository(db)

	for _, u := range users {
		if err := auth.ValidateRegister(auth.RegisterRequest{Username: u.username, Password: u.password}); err != nil {
			log.Fatalf("Seed user %s rejected: %v", u.username, err)
		}
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			log.Fatalf("Hashing password for %s: %v", u.username, err)
		}
		if err := userRepo.SaveCredentials(u.username, hash); err != nil {
			log.Fatalf("Saving credentials for %s: %v", u.username, err)
		}
		if err := userRepo.SaveProfile(domain.Profile{Username: u.username, Country: u.country}); err != nil {
			log.Fatalf("Saving profile for %s: %v", u.username, err)
		}
		fmt.Printf("User seeded: %s (%s)\n", u.username, u.country)
	}

	for _, f := range friendships {
		if err := friendRepo.Add(domain.Friendship{UserA: f[0], UserB: f[1]}); err != nil {
			log.Fatalf("Adding friendship %s/%s: %v", f[0], f[1], err)
		}
		fmt.Printf("Friendship seeded: %s <-> %s\n", f[0], f[1])
	}

	fmt.Println("Done. Log in with any seeded user, password: Correct-Horse-42!")
}
