package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by ValidateUser for unknown users and
// wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

const passwordHashPrefix = "v2:"

// hashPassword creates a SHA-256 hash of the password to handle passwords longer than 72 bytes
func hashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

// encodePassword returns the stored form of password
func encodePassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(hashPassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return passwordHashPrefix + string(hashed), nil
}

// CreateUser creates a new user with hashed password
func (dm *DatabaseManager) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password must not be empty")
	}

	finalHash, err := encodePassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	query := `
        INSERT INTO users (id, username, password_hash, created_at)
        VALUES (?, ?, ?, ?)
    `

	if _, err := dm.ExecWithHealthCheck(ctx, query, user.ID, user.Username, finalHash, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", username, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUser retrieves a user by id
func (dm *DatabaseManager) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE id = ?`

	var user models.User
	err := dm.QueryRowWithHealthCheck(ctx, query, id).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		return nil, notFoundOr("failed to get user", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (dm *DatabaseManager) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE username = ?`

	var user models.User
	err := dm.QueryRowWithHealthCheck(ctx, query, username).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		return nil, notFoundOr("failed to get user", err)
	}

	return &user, nil
}

// ValidateUser checks username and password
func (dm *DatabaseManager) ValidateUser(ctx context.Context, username, password string) (*models.User, error) {
	query := `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE username = ?
    `

	var user models.User
	var passwordHash string

	err := dm.QueryRowWithHealthCheck(ctx, query, username).
		Scan(&user.ID, &user.Username, &passwordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	var compareErr error
	if actualHash, ok := strings.CutPrefix(passwordHash, passwordHashPrefix); ok {
		compareErr = bcrypt.CompareHashAndPassword([]byte(actualHash), []byte(hashPassword(password)))
	} else {
		// Plain bcrypt hashes are upgraded on the first successful login
		compareErr = bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
		if compareErr == nil {
			if err := dm.migrateUserPassword(ctx, user.ID, password); err != nil {
				log.Printf("Warning: failed to migrate password for user %s: %v", user.ID, err)
			}
		}
	}

	if compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// migrateUserPassword updates a user's password to the prefixed format
func (dm *DatabaseManager) migrateUserPassword(ctx context.Context, userID uuid.UUID, password string) error {
	finalHash, err := encodePassword(password)
	if err != nil {
		return err
	}

	if _, err := dm.ExecWithHealthCheck(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, finalHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
