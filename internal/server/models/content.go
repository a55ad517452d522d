// Package models defines server-side data models persisted in the database.
package models

import "time"

// Visibility is the access tier of a content item.
type Visibility string

const (
	VisibilityPublic        Visibility = "public"
	VisibilityLoginRequired Visibility = "login_required"
	VisibilityPassword      Visibility = "password"
	VisibilityPrivate       Visibility = "private"
)

// Valid reports whether v is one of the four known tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityLoginRequired, VisibilityPassword, VisibilityPrivate:
		return true
	}
	return false
}

// ContentItem is a post in the primary content table.
type ContentItem struct {
	ID    int64
	Title string
	Body  string

	// Published is false for drafts.
	Published bool

	Visibility Visibility
	// VisibilitySecret is only set when Visibility is VisibilityPassword.
	// Listings never load it.
	VisibilitySecret string

	OwnerID int64
	// CategoryID is nil for uncategorized items.
	CategoryID *int64

	CreatedAt time.Time
	UpdatedAt time.Time

	// Locked is set on listed items whose body was withheld from the
	// viewer. It is not stored.
	Locked bool
}

// NewContent carries the caller-authored fields of an item to be created.
type NewContent struct {
	Title            string
	Body             string
	Published        bool
	Visibility       Visibility
	VisibilitySecret string
	OwnerID          int64
	CategoryID       *int64
}

// ContentUpdate carries the editable text and placement fields of an item.
type ContentUpdate struct {
	Title      string
	Body       string
	Published  bool
	CategoryID *int64
}
