package model

import "time"

// Admin is an administrator credential.
//
// There are no roles: every admin can do everything the admin pages offer.
// PasswordHash holds the full bcrypt output (salt and cost included) and is
// excluded from JSON so it can never end up in a response by accident.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
