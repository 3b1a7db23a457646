package domain

import "time"

// User represents a registered user. UserID is assigned monotonically at
// registration (max existing ID + 1). The password hash and salt are opaque
// to the domain; hashing lives in utils.
type User struct {
	UserID           int64     `json:"userID"`
	Username         string    `json:"username"` // unique
	PasswordHash     string    `json:"-"`
	Salt             string    `json:"-"`
	RegistrationDate time.Time `json:"registrationDate"`
}
