package models

import (
	"errors"
	"time"
)

// Record collections.
const (
	CollectionFollowRequest = "app.followgate.graph.followRequest"
	CollectionFollow        = "app.followgate.graph.follow"
	CollectionProfile       = "app.followgate.actor.profile"
)

// Follow request statuses. Transitions are one-way: pending -> approved
// or pending -> denied.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"

	// StatusAll is a filter value only, never stored.
	StatusAll = "all"
)

var ErrInvalidRecord = errors.New("invalid follow request record")

// FollowRequestRecord is the stored shape of a follow request, validated at
// the storage boundary before anything downstream touches it.
type FollowRequestRecord struct {
	Type        string     `json:"$type"`
	Subject     string     `json:"subject"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// Validate checks the record holds a recognized status and a subject.
func (r *FollowRequestRecord) Validate() error {
	if r.Subject == "" {
		return ErrInvalidRecord
	}
	switch r.Status {
	case StatusPending, StatusApproved, StatusDenied:
		return nil
	default:
		return ErrInvalidRecord
	}
}

// IsResolved reports whether the request has left the pending state.
func (r *FollowRequestRecord) IsResolved() bool {
	return r.Status == StatusApproved || r.Status == StatusDenied
}

// ValidStatusFilter reports whether s is usable as a listing filter.
func ValidStatusFilter(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusAll:
		return true
	default:
		return false
	}
}

// FollowRecord is the follow edge created when a request is approved. It
// lives under the requester's account; Subject is the account being followed.
type FollowRecord struct {
	Type      string    `json:"$type"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileRecord is the self-profile record read during enrichment. Only the
// fields the enricher cares about are decoded.
type ProfileRecord struct {
	DisplayName *string `json:"displayName,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}
