package models

// IndexEntry is the full-text mirror row of a ContentItem with the same ID.
type IndexEntry struct {
	ID        int64
	TitleText string
	BodyText  string
}

// IndexEntryFor derives the mirror row for item.
func IndexEntryFor(item *ContentItem) *IndexEntry {
	return &IndexEntry{ID: item.ID, TitleText: item.Title, BodyText: item.Body}
}

// DriftReport lists the ids where the mirror disagrees with the content table.
type DriftReport struct {
	// Missing are live items without a mirror row.
	Missing []int64
	// Orphaned are mirror rows without a live item.
	Orphaned []int64
	// Stale are mirror rows whose text differs from the item.
	Stale []int64
}

// Clean reports whether no drift was found.
func (r *DriftReport) Clean() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0 && len(r.Stale) == 0
}
