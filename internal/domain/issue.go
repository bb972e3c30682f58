package domain

// Issue represents one published edition in the library catalog.
//
// It is assembled from a meta.json record plus identifiers taken from the
// record's storage key. The JSON encoding is the catalog wire format.
//
// An Issue is uniquely identified by (SourceID, ID), never by ID alone.
type Issue struct {
	// ─────────────────────────────
	// Identity (derived from the key)
	// ─────────────────────────────

	// ID is the issue folder name.
	// Example: 2026-01-20
	ID string `json:"id"`

	// SourceID is the publication folder name.
	// Example: economist
	SourceID string `json:"sourceId"`

	// ─────────────────────────────
	// Descriptive metadata (verbatim from meta.json)
	// ─────────────────────────────

	Title       string `json:"title"`
	IssueNumber string `json:"issueNumber"`

	// PublishDate is a fixed-width ISO-8601 date, so string order is date order.
	PublishDate string `json:"publishDate"`

	// Summary may hold a placeholder while the issue awaits analysis.
	Summary string `json:"summary"`

	// KeyTakeaways is never nil on the wire.
	KeyTakeaways []string `json:"keyTakeaways"`

	Tags          []string       `json:"tags,omitempty"`
	RelatedReport *RelatedReport `json:"relatedReport,omitempty"`

	// ─────────────────────────────
	// Assets (store-relative keys, not URLs)
	// ─────────────────────────────

	Cover  string `json:"cover"`
	PDFURL string `json:"pdfUrl"`
}

// RelatedReport is passed through untouched.
type RelatedReport struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CatalogKey returns the pair that identifies the issue across sources.
func (i Issue) CatalogKey() string {
	return i.SourceID + "/" + i.ID
}
