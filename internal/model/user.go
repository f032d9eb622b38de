// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts come from two places: email/password registration and GitHub
// sign-in. GitHubID is zero for password accounts, and PasswordHash is empty
// for GitHub accounts, so neither login path can be used for the other kind.
//
// PasswordHash is tagged json:"-" so a User can be written to a response
// without leaking the bcrypt hash.
type User struct {
	ID           string    `json:"id"       db:"id"`
	Name         string    `json:"name"     db:"name"`
	Email        string    `json:"email"    db:"email"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	Avatar       string    `json:"avatar"   db:"avatar"`
	GitHubID     int64     `json:"githubId,omitempty" db:"github_id"`
	CreatedAt    time.Time `json:"date"     db:"created_at"`
}

// UserRef is the owner join attached to profiles: just enough of the user
// to render a card without a second request.
type UserRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
