package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner of devices. Accounts are managed outside of the
// ingestion core; only the identity is needed here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
