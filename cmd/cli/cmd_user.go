package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long:  `Commands for managing device owners in Polaris.`,
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long:  `Create a new user. The password is read from the terminal.`,
	RunE:  runCreateUser,
}

var tokenUserCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a user",
	Long:  `Issue a signed API token for an existing user without asking for the password.`,
	RunE:  runUserToken,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(tokenUserCmd)

	createUserCmd.Flags().String("username", "", "Username (prompted when empty)")
	tokenUserCmd.Flags().String("username", "", "Username of the token owner")
	tokenUserCmd.MarkFlagRequired("username")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	dbManager := dbManagerFrom(cmd)

	if err := dbManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Enter username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = line
	}
	username = strings.TrimSpace(username)

	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := dbManager.CreateUser(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully!\n")
	fmt.Printf("ID: %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runUserToken(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	user, err := dbManagerFrom(cmd).GetUserByUsername(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}

	auth := AuthConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL}
	token, expiresAt, err := auth.GenerateJWT(user)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "Expires: %s\n", expiresAt.Format("2006-01-02 15:04:05"))

	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
