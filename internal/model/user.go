package model

import "time"

// User represents a registered account.
//
// Two login paths populate it: email/password registration (PasswordHash set,
// GitHubID zero) and GitHub OAuth (GitHubID set, PasswordHash empty). We
// generate our own internal string ID (xid) rather than keying on either
// external identifier, so a user's primary key never depends on how they
// signed up.
//
// PasswordHash is never serialized — note the json:"-" tag. Returning it in
// an API response would hand attackers offline cracking material.
type User struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"-"` // 0 when the account was created via email/password
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Timezone     string    `json:"timezone"`
	Language     string    `json:"language"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the user-editable subset of User returned by the profile API.
// MemberSince mirrors CreatedAt so the frontend can show account age without
// exposing the rest of the record.
type Profile struct {
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Timezone     string    `json:"timezone"`
	Language     string    `json:"language"`
	ProfileImage string    `json:"profileImage"`
	MemberSince  time.Time `json:"memberSince"`
}
