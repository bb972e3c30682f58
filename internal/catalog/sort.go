package catalog

import (
	"sort"

	"github.com/hiic/library/internal/domain"
)

// Newest returns a copy of the issues ordered by publish date, newest first.
// Ties fall back to source then id so the order is stable across builds.
func (c *Catalog) Newest() []domain.Issue {
	out := make([]domain.Issue, len(c.Issues))
	copy(out, c.Issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublishDate != out[j].PublishDate {
			return out[i].PublishDate > out[j].PublishDate
		}
		return out[i].CatalogKey() < out[j].CatalogKey()
	})
	return out
}

// Sources returns the distinct source ids present in the catalog, sorted.
func (c *Catalog) Sources() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, issue := range c.Issues {
		if !seen[issue.SourceID] {
			seen[issue.SourceID] = true
			ids = append(ids, issue.SourceID)
		}
	}
	sort.Strings(ids)
	return ids
}
