package entity

import (
	"time"
)

// User is the identity record behind a profile.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password_hash"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
