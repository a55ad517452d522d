package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
)

// Key is the ordering key of a row: created_at with id as the tiebreak.
type Key struct {
	CreatedAt time.Time
	ID        int64
}

// Before reports whether k sorts after other in created_at DESC, id DESC
// order, i.e. whether a row with key k belongs on a later page than other.
func (k Key) Before(other Key) bool {
	if !k.CreatedAt.Equal(other.CreatedAt) {
		return k.CreatedAt.Before(other.CreatedAt)
	}
	return k.ID < other.ID
}

// EncodeCursor renders k as an opaque URL-safe token.
func EncodeCursor(k Key) string {
	raw := strconv.FormatInt(k.CreatedAt.UnixNano(), 10) + "." + strconv.FormatInt(k.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", common.ErrInvalidCursor, err)
	}

	ts, id, ok := strings.Cut(string(raw), ".")
	if !ok {
		return Key{}, fmt.Errorf("%w: malformed token", common.ErrInvalidCursor)
	}

	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: bad timestamp", common.ErrInvalidCursor)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Key{}, fmt.Errorf("%w: bad id", common.ErrInvalidCursor)
	}

	return Key{CreatedAt: time.Unix(0, nanos).UTC(), ID: n}, nil
}
