package sqlstore

import (
	"context"

	"github.com/sakif/conduit/internal/database"
)

// ListTags returns every tag name linked to at least one article, sorted.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	tags, err := database.ProcessContainer(ctx, s.ex, "tags.list", nil, stmt(s.q.selectTags), mapString)
	if err != nil {
		return nil, translate(err, "listing tags", nil)
	}
	return tags, nil
}
