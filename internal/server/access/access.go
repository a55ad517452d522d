// Package access decides whether a viewer may read a content item.
//
// The decision is a pure function of the item's visibility, owner and
// secret, the viewer, and the viewer's session UnlockCache.
package access

import (
	"github.com/lbxxgn/my-blog/internal/server/models"
)

// Role names carried by viewer tokens.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// Viewer is the identity a read request is made under.
type Viewer struct {
	UserID        int64
	Authenticated bool
	Role          string
}

// Anonymous is the viewer of an unauthenticated request.
func Anonymous() Viewer { return Viewer{} }

// User builds an authenticated viewer.
func User(id int64, role string) Viewer {
	return Viewer{UserID: id, Authenticated: true, Role: role}
}

// IsAdmin reports whether v holds the administrative role.
func (v Viewer) IsAdmin() bool { return v.Authenticated && v.Role == RoleAdmin }

// Owns reports whether v authored item.
func (v Viewer) Owns(item *models.ContentItem) bool {
	return v.Authenticated && v.UserID == item.OwnerID
}

// Reason explains a denial so the caller can render the right prompt.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonLoginRequired    Reason = "login_required"
	ReasonPrivate          Reason = "private"
	ReasonPasswordRequired Reason = "password_required"
	ReasonUnknown          Reason = "unknown"
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allowed = Decision{Allowed: true}

func denied(r Reason) Decision { return Decision{Reason: r} }

// String renders "allowed" or "denied:<reason>".
func (d Decision) String() string {
	if d.Allowed {
		return "allowed"
	}
	if d.Reason == ReasonNone {
		return "denied:" + string(ReasonUnknown)
	}
	return "denied:" + string(d.Reason)
}
