package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gmail-sender-stats-go/internal/auth"
)

func main() {
	credentialsFile := os.Getenv("GMAIL_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = "credentials.json"
	}
	tokenFile := os.Getenv("GMAIL_TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = "tokencache.json"
	}

	authURL, err := auth.AuthCodeURL(credentialsFile)
	if err != nil {
		log.Fatalf("Unable to read OAuth client configuration: %v", err)
	}

	fmt.Printf("Go to the following link in your browser: %v\n", authURL)
	fmt.Println("\nAfter authorization, copy the code you receive.")

	var authCode string
	fmt.Print("\nEnter the authorization code: ")
	fmt.Scan(&authCode)

	token, err := auth.ExchangeAndSave(context.Background(), credentialsFile, tokenFile, authCode)
	if err != nil {
		log.Fatalf("Unable to retrieve token: %v", err)
	}

	fmt.Printf("\nToken saved to %s\n", tokenFile)
	fmt.Printf("Token Type: %s\n", token.TokenType)
	fmt.Printf("Expiry: %v\n", token.Expiry)
}
