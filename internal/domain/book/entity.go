package book

import "time"

// Book represents a catalog record. Copies counts the physical units
// currently available to borrow and never drops below zero.
type Book struct {
	ID        string
	Name      string
	Author    string
	Code      string // Code is the human-readable catalog code, e.g. "GETH-2001"
	Copies    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name   *string
	Author *string
	Code   *string
	Copies *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Author == nil && p.Code == nil && p.Copies == nil
}
