package domain

import "time"

// User is an author account. Email is stored lowercased and is the
// login identifier; DisplayName is what readers see on published
// stories.
type User struct {
	ID           int64
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
