// Package filters builds listing predicates from a closed set of clauses.
//
// Every clause maps to a fixed SQL fragment written against the content table
// aliased as "p". Caller-supplied values only ever travel as bound arguments;
// no predicate text is derived from caller input.
package filters

import (
	"strings"
)

// Kind enumerates the recognised clauses.
type Kind int

const (
	kindInvalid Kind = iota
	KindPublishedOnly
	KindCategoryEquals
	KindCategoryIsNone
	KindTagEquals
	KindAuthorEquals
	KindFreeText
	KindListableAnonymous
	KindListableMember
)

var fragments = map[Kind]string{
	KindPublishedOnly:  `p.published = ?`,
	KindCategoryEquals: `p.category_id = ?`,
	KindCategoryIsNone: `p.category_id IS NULL`,
	KindTagEquals:      `EXISTS (SELECT 1 FROM content_tags ct WHERE ct.content_id = p.id AND ct.tag_id = ?)`,
	KindAuthorEquals:   `p.owner_id = ?`,
	KindFreeText: `EXISTS (SELECT 1 FROM content_index ci WHERE ci.id = p.id ` +
		`AND (LOWER(ci.title_text) LIKE LOWER(?) ESCAPE '\' OR LOWER(ci.body_text) LIKE LOWER(?) ESCAPE '\'))`,
	KindListableAnonymous: `p.visibility IN ('public', 'password')`,
	KindListableMember:    `(p.visibility <> 'private' OR p.owner_id = ?)`,
}

// Clause is one conjunct of a listing predicate. The zero value is ignored.
type Clause struct {
	kind Kind
	id   int64
	text string
}

// Kind reports which clause this is.
func (c Clause) Kind() Kind { return c.kind }

func PublishedOnly() Clause { return Clause{kind: KindPublishedOnly} }

func CategoryEquals(id int64) Clause { return Clause{kind: KindCategoryEquals, id: id} }

func CategoryIsNone() Clause { return Clause{kind: KindCategoryIsNone} }

func TagEquals(id int64) Clause { return Clause{kind: KindTagEquals, id: id} }

func AuthorEquals(id int64) Clause { return Clause{kind: KindAuthorEquals, id: id} }

// FreeText matches q as a case-insensitive substring of the indexed title or
// body. It searches the index mirror, not the content table.
func FreeText(q string) Clause { return Clause{kind: KindFreeText, text: q} }

// ListableByAnonymous hides items an anonymous viewer can never open.
// Password items stay listed; their bodies are redacted by the caller.
func ListableByAnonymous() Clause { return Clause{kind: KindListableAnonymous} }

// ListableByMember hides other principals' private items from a signed-in viewer.
func ListableByMember(userID int64) Clause { return Clause{kind: KindListableMember, id: userID} }

func (c Clause) args() []any {
	switch c.kind {
	case KindPublishedOnly:
		return []any{true}
	case KindCategoryEquals, KindTagEquals, KindAuthorEquals, KindListableMember:
		return []any{c.id}
	case KindFreeText:
		p := likePattern(c.text)
		return []any{p, p}
	default:
		return nil
	}
}

// likePattern escapes LIKE metacharacters and wraps q in '%'. Case folding
// happens in SQL so both sides go through the same LOWER.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// Set is a conjunction of clauses.
type Set []Clause

// With returns a copy of s extended by c.
func (s Set) With(c ...Clause) Set {
	out := make(Set, 0, len(s)+len(c))
	out = append(out, s...)
	return append(out, c...)
}

// Predicate is a compiled WHERE body with '?' placeholders and its arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// Where renders " WHERE <sql>" or an empty string for an empty predicate.
func (p Predicate) Where() string {
	if p.SQL == "" {
		return ""
	}
	return " WHERE " + p.SQL
}

// Compile joins the fragments of every recognised clause with AND.
func (s Set) Compile() Predicate {
	parts := make([]string, 0, len(s))
	var args []any
	for _, c := range s {
		frag, ok := fragments[c.kind]
		if !ok {
			continue
		}
		if c.kind == KindFreeText && strings.TrimSpace(c.text) == "" {
			continue
		}
		parts = append(parts, frag)
		args = append(args, c.args()...)
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args}
}
