package domain

import "time"

// User is the profile visible to its owner. The password hash lives only in
// the users table and is never selected into this struct.
type User struct {
	ID        string
	Email     string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
}

// Update carries the optional profile fields; nil means "leave unchanged".
type Update struct {
	Name    *string
	Address *string
	Phone   *string
}
