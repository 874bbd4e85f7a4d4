// Package identity resolves account identifiers to identity documents.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Document is a resolved identity document.
type Document struct {
	DID         string   `json:"did"`
	AlsoKnownAs []string `json:"alsoKnownAs,omitempty"`
}

// Handle returns the document's primary handle alias, or "" if none is
// declared.
func (d *Document) Handle() string {
	for _, aka := range d.AlsoKnownAs {
		if h, ok := strings.CutPrefix(aka, "at://"); ok {
			return h
		}
	}
	return ""
}

// Resolver resolves an account identifier to its identity document.
type Resolver interface {
	Resolve(ctx context.Context, did string) (*Document, error)
}

// Directory resolves DIDs against an HTTP identity directory.
type Directory struct {
	base   string
	client *http.Client
}

// NewDirectory creates a resolver against the directory at base.
func NewDirectory(base string) *Directory {
	return &Directory{
		base: strings.TrimRight(base, "/"),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Resolve fetches the identity document for a DID.
func (d *Directory) Resolve(ctx context.Context, did string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.base+"/"+url.PathEscape(did), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", did, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve %s: directory returned %d", did, resp.StatusCode)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("resolve %s: decode document: %w", did, err)
	}
	if doc.DID == "" {
		doc.DID = did
	}
	return &doc, nil
}
