// Command dashpw generates a bcrypt hash for the analytics dashboard
// password. The printed hash goes into the DASHBOARD_PASSWORD_HASH
// environment variable so the plain password never has to appear in
// deployment manifests.
package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const minPasswordLength = 6

func main() {
	if len(os.Args) > 1 {
		printUsage()
		os.Exit(1)
	}

	password, err := promptPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := hashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Set this in your environment:")
	fmt.Printf("  DASHBOARD_PASSWORD_HASH='%s'\n", hash)
}

func promptPassword() ([]byte, error) {
	fmt.Print("Dashboard Password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm Password: ")
	confirm, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if !bytes.Equal(password, confirm) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func hashPassword(password []byte) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > 72 {
		return "", fmt.Errorf("password must not exceed 72 characters")
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func printUsage() {
	fmt.Println("AutoCut Dashboard Password Hasher")
	fmt.Println("")
	fmt.Println("Usage: dashpw")
	fmt.Println("")
	fmt.Println("Prompts for a password and prints the bcrypt hash to use")
	fmt.Println("as DASHBOARD_PASSWORD_HASH.")
}
