package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Generates the bcrypt hash for ADMIN_PASSWORD_HASH in .env.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run main.go <password>")
	}

	password := os.Args[1]

	// bcrypt.DefaultCost (10) is a good balance of security and speed.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(string(hashedPassword))
}
