package graph

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"followgate/internal/identity"
	"followgate/internal/models"
	"followgate/internal/syntax"
)

// DefaultEnrichConcurrency bounds the identity/profile fan-out per listing
// call.
const DefaultEnrichConcurrency = 10

// Enricher augments raw listing rows with requester identity and profile
// data. Every lookup is best-effort: a row degrades to bare identifiers
// rather than failing the listing.
type Enricher struct {
	records     RecordGetter
	resolver    identity.Resolver
	concurrency int
}

// NewEnricher creates an enricher with the given fan-out bound. A
// non-positive bound falls back to DefaultEnrichConcurrency.
func NewEnricher(records RecordGetter, resolver identity.Resolver, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Enricher{records: records, resolver: resolver, concurrency: concurrency}
}

// enrich resolves each entry concurrently, preserving input order in the
// output. Per-entry failures are isolated; tasks never return errors.
func (e *Enricher) enrich(ctx context.Context, entries []entry) []models.FollowRequestView {
	views := make([]models.FollowRequestView, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, en := range entries {
		g.Go(func() error {
			views[i] = e.enrichOne(ctx, en)
			return nil
		})
	}
	g.Wait()

	return views
}

func (e *Enricher) enrichOne(ctx context.Context, en entry) models.FollowRequestView {
	view := models.FollowRequestView{
		URI: en.uri,
		CID: en.cid,
		Requester: models.RequesterView{
			DID:    en.requester,
			Handle: en.requester,
		},
		Subject:     en.record.Subject,
		Status:      en.record.Status,
		CreatedAt:   en.record.CreatedAt,
		RespondedAt: en.record.RespondedAt,
	}

	if doc, err := e.resolver.Resolve(ctx, en.requester); err == nil {
		if handle := doc.Handle(); handle != "" {
			view.Requester.Handle = handle
		}
	}

	profileURI := syntax.Make(en.requester, models.CollectionProfile, "self")
	if rec, err := e.records.GetRecord(ctx, profileURI); err == nil {
		var profile models.ProfileRecord
		if json.Unmarshal(rec.Value, &profile) == nil {
			view.Requester.DisplayName = profile.DisplayName
			view.Requester.Avatar = profile.Avatar
		}
	}

	return view
}
