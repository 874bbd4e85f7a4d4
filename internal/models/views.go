package models

import "time"

// RecordRef identifies one committed revision of a record.
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// RequesterView is the enriched identity of a request's originator. Handle
// falls back to the DID when resolution fails; DisplayName and Avatar are
// unset when the profile record is missing or unreadable.
type RequesterView struct {
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
	DisplayName *string `json:"displayName,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// FollowRequestView is one listing result row.
type FollowRequestView struct {
	URI         string        `json:"uri"`
	CID         string        `json:"cid"`
	Requester   RequesterView `json:"requester"`
	Subject     string        `json:"subject"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	RespondedAt *time.Time    `json:"respondedAt,omitempty"`
}

// FollowRequestPage is the response of a listing call. Cursor is present
// iff more qualifying items exist beyond this page.
type FollowRequestPage struct {
	Cursor   string              `json:"cursor,omitempty"`
	Requests []FollowRequestView `json:"requests"`
}

// RespondResult is the response of an approve/deny call. FollowRecord is
// present only on approval.
type RespondResult struct {
	Request      RecordRef  `json:"request"`
	FollowRecord *RecordRef `json:"followRecord,omitempty"`
}
