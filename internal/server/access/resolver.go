package access

import (
	"github.com/lbxxgn/my-blog/internal/server/models"
)

// Resolver runs the visibility state machine.
//
//	public          -> allowed
//	login_required  -> allowed iff authenticated
//	private         -> allowed iff owner or admin
//	password        -> allowed iff owner, already unlocked, or the supplied
//	                   credential matches (which unlocks it for the session)
//
// Admins do not bypass password protection; only owners do.
type Resolver struct {
	match SecretMatcher
}

// NewResolver uses MatchSecret when match is nil.
func NewResolver(match SecretMatcher) *Resolver {
	if match == nil {
		match = MatchSecret
	}
	return &Resolver{match: match}
}

// Resolve checks item for viewer without a credential.
func (r *Resolver) Resolve(item *models.ContentItem, viewer Viewer, cache UnlockCache) Decision {
	return r.ResolveWithCredential(item, viewer, cache, "")
}

// ResolveWithCredential checks item for viewer. A non-empty credential is
// compared against a password item's secret; on a match the item is marked
// unlocked in cache and access is allowed.
func (r *Resolver) ResolveWithCredential(item *models.ContentItem, viewer Viewer, cache UnlockCache, credential string) Decision {
	switch item.Visibility {
	case models.VisibilityPublic:
		return allowed

	case models.VisibilityLoginRequired:
		if viewer.Authenticated {
			return allowed
		}
		return denied(ReasonLoginRequired)

	case models.VisibilityPrivate:
		if viewer.Owns(item) || viewer.IsAdmin() {
			return allowed
		}
		return denied(ReasonPrivate)

	case models.VisibilityPassword:
		if viewer.Owns(item) {
			return allowed
		}
		if cache != nil && cache.IsUnlocked(item.ID) {
			return allowed
		}
		if credential != "" && r.Unlock(item, credential, cache) {
			return allowed
		}
		return denied(ReasonPasswordRequired)

	default:
		return denied(ReasonUnknown)
	}
}

// Unlock compares candidate with a password item's secret and, on a match,
// records the unlock in cache. It returns false for non-password items.
func (r *Resolver) Unlock(item *models.ContentItem, candidate string, cache UnlockCache) bool {
	if item.Visibility != models.VisibilityPassword {
		return false
	}
	if !r.match(item.VisibilitySecret, candidate) {
		return false
	}
	if cache != nil {
		cache.MarkUnlocked(item.ID)
	}
	return true
}
