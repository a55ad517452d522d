package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lbxxgn/my-blog/internal/common"
)

// Recognised caller parameter keys. Anything else is ignored.
const (
	ParamCategoryID = "category_id"
	ParamTagID      = "tag_id"
	ParamAuthorID   = "author_id"
	ParamQuery      = "q"
	ParamQueryLong  = "query"
)

// Sentinels accepted for ParamCategoryID that select uncategorized items.
var uncategorized = map[string]struct{}{"none": {}, "uncategorized": {}}

// FromParams turns caller parameters into a Set. Drafts are excluded unless
// includeDrafts is set by the (trusted) calling code. Empty values are
// ignored; a non-numeric id is rejected with common.ErrInvalidInput.
func FromParams(params map[string]string, includeDrafts bool) (Set, error) {
	var s Set
	if !includeDrafts {
		s = append(s, PublishedOnly())
	}

	if v := strings.TrimSpace(params[ParamCategoryID]); v != "" {
		if _, ok := uncategorized[strings.ToLower(v)]; ok {
			s = append(s, CategoryIsNone())
		} else {
			id, err := parseID(ParamCategoryID, v)
			if err != nil {
				return nil, err
			}
			s = append(s, CategoryEquals(id))
		}
	}

	if v := strings.TrimSpace(params[ParamTagID]); v != "" {
		id, err := parseID(ParamTagID, v)
		if err != nil {
			return nil, err
		}
		s = append(s, TagEquals(id))
	}

	if v := strings.TrimSpace(params[ParamAuthorID]); v != "" {
		id, err := parseID(ParamAuthorID, v)
		if err != nil {
			return nil, err
		}
		s = append(s, AuthorEquals(id))
	}

	q := strings.TrimSpace(params[ParamQuery])
	if q == "" {
		q = strings.TrimSpace(params[ParamQueryLong])
	}
	if q != "" {
		s = append(s, FreeText(q))
	}

	return s, nil
}

func parseID(key, v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", common.ErrInvalidInput, key, v)
	}
	return id, nil
}
