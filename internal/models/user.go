package models

// User represents a registered account.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password" json:"-"` // Never expose this to the client
}
