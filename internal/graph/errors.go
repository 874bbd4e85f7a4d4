package graph

import "errors"

// Workflow error sentinels. Each maps to a machine-readable error kind on
// the wire.
var (
	// ErrInvalidResponse rejects a decision outside {approve, deny}
	// before any I/O happens.
	ErrInvalidResponse = errors.New(`response must be either "approve" or "deny"`)

	// ErrRequestNotFound covers both a malformed locator and a locator
	// with no record behind it.
	ErrRequestNotFound = errors.New("follow request not found")

	// ErrNotAuthorized is returned when the acting account is not the
	// subject of the request. Checked after existence, so a missing
	// request and an unauthorized one stay distinguishable.
	ErrNotAuthorized = errors.New("not authorized to respond to this request")
)
