package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"followgate/internal/models"
	"followgate/internal/store"
	"followgate/internal/syntax"
)

// Decisions accepted by Respond.
const (
	DecisionApprove = "approve"
	DecisionDeny    = "deny"
)

// Coordinator applies approve/deny decisions to follow requests. The status
// flip and the follow-edge creation are two separate transactions: if the
// second fails the request stays durably approved with no edge.
type Coordinator struct {
	records   RecordStore
	sequencer Sequencer
	roots     AccountDirectory
	now       func() time.Time
}

// NewCoordinator creates a response coordinator over the given
// collaborators.
func NewCoordinator(records RecordStore, seq Sequencer, roots AccountDirectory) *Coordinator {
	return &Coordinator{records: records, sequencer: seq, roots: roots, now: time.Now}
}

// Respond transitions the request at requestURI to approved or denied on
// behalf of actor, creating the follow edge on approval.
//
// The previously read integrity token is the only concurrency guard: a
// commit racing with another writer fails rather than overwriting. There is
// no separate still-pending check, so a resolved request whose token still
// matches can be re-resolved.
func (c *Coordinator) Respond(ctx context.Context, actor, requestURI, decision string) (*models.RespondResult, error) {
	if decision != DecisionApprove && decision != DecisionDeny {
		return nil, ErrInvalidResponse
	}

	uri, err := syntax.Parse(requestURI)
	if err != nil || uri.Collection != models.CollectionFollowRequest {
		return nil, ErrRequestNotFound
	}

	rec, err := c.records.GetRecord(ctx, uri)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch follow request: %w", err)
	}

	var request models.FollowRequestRecord
	if err := json.Unmarshal(rec.Value, &request); err != nil {
		return nil, ErrRequestNotFound
	}
	if err := request.Validate(); err != nil {
		return nil, ErrRequestNotFound
	}

	if request.Subject != actor {
		return nil, ErrNotAuthorized
	}

	now := c.now().UTC()
	updated := request
	updated.Status = models.StatusApproved
	if decision == DecisionDeny {
		updated.Status = models.StatusDenied
	}
	updated.RespondedAt = &now

	// Once committing starts, caller cancellation must not tear a
	// transaction apart mid-flight.
	ctx = context.WithoutCancel(ctx)

	var requestCID string
	commit, err := c.records.Transact(ctx, uri.DID, func(tx store.RecordTx) error {
		cid, err := tx.UpdateRecord(ctx, uri.Collection, uri.Rkey, &updated, rec.CID)
		if err != nil {
			return err
		}
		requestCID = cid
		return nil
	})
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update follow request: %w", err)
	}

	if err := c.finalize(ctx, uri.DID, commit); err != nil {
		return nil, err
	}

	result := &models.RespondResult{
		Request: models.RecordRef{URI: requestURI, CID: requestCID},
	}

	if decision == DecisionApprove {
		follow := models.FollowRecord{
			Type:      models.CollectionFollow,
			Subject:   actor,
			CreatedAt: now,
		}

		var followRef models.RecordRef
		followCommit, err := c.records.Transact(ctx, uri.DID, func(tx store.RecordTx) error {
			followURI, cid, err := tx.CreateRecord(ctx, models.CollectionFollow, &follow)
			if err != nil {
				return err
			}
			followRef = models.RecordRef{URI: followURI.String(), CID: cid}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("create follow record: %w", err)
		}

		if err := c.finalize(ctx, uri.DID, followCommit); err != nil {
			return nil, err
		}

		result.FollowRecord = &followRef
	}

	return result, nil
}

// finalize emits the commit into the sequencing stream and advances the
// account's durable root pointer.
func (c *Coordinator) finalize(ctx context.Context, did string, commit store.Commit) error {
	if err := c.sequencer.SequenceCommit(ctx, did, commit); err != nil {
		return fmt.Errorf("sequence commit: %w", err)
	}
	if err := c.roots.UpdateRoot(ctx, did, commit); err != nil {
		return fmt.Errorf("update account root: %w", err)
	}
	return nil
}
