package user

import "time"

// User represents a registered library member.
type User struct {
	ID        string            // ID is the opaque identifier of the user
	Roll      string            // Roll is the unique student/member identifier
	Email     string            // Email is the unique email address of the user
	Name      string            // Name is the display name of the user
	Profile   map[string]string // Profile holds free-form profile fields
	CreatedAt time.Time
}
