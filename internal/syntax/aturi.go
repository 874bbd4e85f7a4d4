// Package syntax implements parsing of record locators.
package syntax

import (
	"errors"
	"strings"
)

// ErrInvalidATURI is returned when a locator cannot be parsed.
var ErrInvalidATURI = errors.New("invalid at-uri")

// ATURI addresses a single record: at://<did>/<collection>/<rkey>.
// The locator is stable across record mutations.
type ATURI struct {
	DID        string
	Collection string
	Rkey       string
}

// Parse parses a raw locator string into its constituent parts.
func Parse(raw string) (ATURI, error) {
	rest, ok := strings.CutPrefix(raw, "at://")
	if !ok {
		return ATURI{}, ErrInvalidATURI
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return ATURI{}, ErrInvalidATURI
	}

	uri := ATURI{DID: parts[0], Collection: parts[1], Rkey: parts[2]}
	if uri.DID == "" || uri.Collection == "" || uri.Rkey == "" {
		return ATURI{}, ErrInvalidATURI
	}
	if !strings.HasPrefix(uri.DID, "did:") {
		return ATURI{}, ErrInvalidATURI
	}

	return uri, nil
}

// Make builds a locator from its parts without validation.
func Make(did, collection, rkey string) ATURI {
	return ATURI{DID: did, Collection: collection, Rkey: rkey}
}

// String renders the locator in at://<did>/<collection>/<rkey> form.
func (u ATURI) String() string {
	return "at://" + u.DID + "/" + u.Collection + "/" + u.Rkey
}
