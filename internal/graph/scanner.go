package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"followgate/internal/models"
	"followgate/internal/syntax"
)

// entry is one raw listing row prior to enrichment.
type entry struct {
	uri       string
	cid       string
	requester string
	record    models.FollowRequestRecord
}

// scanner lists an account's follow requests in one direction.
type scanner interface {
	scan(ctx context.Context, actor, status string, limit int, cursor string) ([]entry, error)
}

func statusMatches(filter, status string) bool {
	return filter == models.StatusAll || filter == status
}

// outgoingScanner lists requests the actor made, straight from their own
// record collection.
type outgoingScanner struct {
	records RecordStore
}

func (s *outgoingScanner) scan(ctx context.Context, actor, status string, limit int, cursor string) ([]entry, error) {
	// One extra record to detect a following page. The limit applies
	// before status filtering, so a filtered page may come up short.
	records, err := s.records.ListCollection(ctx, actor, models.CollectionFollowRequest, limit+1, cursor)
	if err != nil {
		return nil, fmt.Errorf("list follow requests: %w", err)
	}

	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		var value models.FollowRequestRecord
		if err := json.Unmarshal(rec.Value, &value); err != nil {
			slog.Warn("skipping malformed follow request", "uri", rec.URI.String(), "error", err)
			continue
		}
		if err := value.Validate(); err != nil {
			slog.Warn("skipping invalid follow request", "uri", rec.URI.String(), "error", err)
			continue
		}
		if !statusMatches(status, value.Status) {
			continue
		}
		entries = append(entries, entry{
			uri:       rec.URI.String(),
			cid:       rec.CID,
			requester: actor,
			record:    value,
		})
	}
	return entries, nil
}

// incomingScanner resolves requests targeting the actor through the
// reverse-link index, then hydrates each candidate from the requester's
// account.
type incomingScanner struct {
	records RecordStore
}

func (s *incomingScanner) scan(ctx context.Context, actor, status string, limit int, cursor string) ([]entry, error) {
	links, err := s.records.GetReverseLinks(ctx, actor, models.CollectionFollowRequest, "subject")
	if err != nil {
		return nil, fmt.Errorf("get follow request backlinks: %w", err)
	}

	// Resume at the cursor, inclusive; it is the locator of the first
	// item of this page. A cursor no longer present in the index (source
	// record pruned between pages) restarts the listing from the
	// beginning, same as the record store's stale-cursor handling:
	// re-serving earlier rows beats dropping the rest of the listing.
	if cursor != "" {
		for i, link := range links {
			if link.URI == cursor {
				links = links[i:]
				break
			}
		}
	}

	// The limit+1 window applies to candidates before per-record status
	// filtering. Filtering can shrink the page below limit; accepted
	// trade-off for not maintaining a second forward-indexed collection.
	if len(links) > limit+1 {
		links = links[:limit+1]
	}

	entries := make([]entry, 0, len(links))
	for _, link := range links {
		uri, err := syntax.Parse(link.URI)
		if err != nil {
			continue
		}

		// A candidate that cannot be hydrated (record deleted, account
		// unreachable, malformed) is skipped, never fatal.
		rec, err := s.records.GetRecord(ctx, uri)
		if err != nil {
			slog.Debug("skipping unhydratable follow request", "uri", link.URI, "error", err)
			continue
		}

		var value models.FollowRequestRecord
		if err := json.Unmarshal(rec.Value, &value); err != nil {
			continue
		}
		if err := value.Validate(); err != nil {
			continue
		}
		if !statusMatches(status, value.Status) {
			continue
		}

		entries = append(entries, entry{
			uri:       link.URI,
			cid:       rec.CID,
			requester: uri.DID,
			record:    value,
		})
	}
	return entries, nil
}
