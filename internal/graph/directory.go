package graph

import (
	"context"

	"followgate/internal/models"
)

// Listing directions.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListParams are the caller-supplied listing parameters. Zero values take
// the documented defaults.
type ListParams struct {
	Direction string
	Status    string
	Limit     int
	Cursor    string
}

func (p *ListParams) normalize() {
	if p.Direction != DirectionOutgoing {
		p.Direction = DirectionIncoming
	}
	if !models.ValidStatusFilter(p.Status) {
		p.Status = models.StatusPending
	}
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
}

// Directory lists an account's follow requests: scanner selection by
// direction, status filtering, pagination, then enrichment.
type Directory struct {
	outgoing scanner
	incoming scanner
	enricher *Enricher
}

// NewDirectory creates a request directory over the given collaborators.
func NewDirectory(records RecordStore, enricher *Enricher) *Directory {
	return &Directory{
		outgoing: &outgoingScanner{records: records},
		incoming: &incomingScanner{records: records},
		enricher: enricher,
	}
}

// List returns one page of follow requests for the actor. A single call
// only ever uses one scanner, so output ordering is that scanner's natural
// order.
func (d *Directory) List(ctx context.Context, actor string, params ListParams) (*models.FollowRequestPage, error) {
	params.normalize()

	sc := d.incoming
	if params.Direction == DirectionOutgoing {
		sc = d.outgoing
	}

	entries, err := sc.scan(ctx, actor, params.Status, params.Limit, params.Cursor)
	if err != nil {
		return nil, err
	}

	// The scanner yielded limit+1 at most; the extra row becomes the
	// next-page cursor.
	var cursor string
	if len(entries) > params.Limit {
		cursor = entries[params.Limit].uri
		entries = entries[:params.Limit]
	}

	return &models.FollowRequestPage{
		Cursor:   cursor,
		Requests: d.enricher.enrich(ctx, entries),
	}, nil
}
