// Package testutil provides in-memory collaborator fakes for workflow tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"followgate/internal/identity"
	"followgate/internal/store"
	"followgate/internal/syntax"
)

// FakeStore is an in-memory record store with the same listing, backlink
// and compare-and-swap semantics as the Postgres implementation.
type FakeStore struct {
	mu      sync.Mutex
	records map[string]store.Record // keyed by locator
	order   []string                // locators in creation order
	revSeq  int
	rkeySeq int

	// Commits holds every commit produced by Transact, in order.
	Commits []store.Commit

	// GetErr simulates hydration failures for specific locators.
	GetErr map[string]error

	// GetHook, when set, intercepts GetRecord results (e.g. to serve a
	// stale snapshot).
	GetHook func(uri string, rec *store.Record) (*store.Record, error)

	// ListErr and LinksErr make the respective read paths fail.
	ListErr  error
	LinksErr error
}

// NewFakeStore creates an empty fake record store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		records: make(map[string]store.Record),
		GetErr:  make(map[string]error),
	}
}

// Put inserts a record directly, bypassing transactions, and returns its
// locator and integrity token.
func (f *FakeStore) Put(t *testing.T, did, collection, rkey string, value any) (string, string) {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	uri := syntax.Make(did, collection, rkey).String()
	cid := store.ComputeCID(data)
	if _, exists := f.records[uri]; !exists {
		f.order = append(f.order, uri)
	}
	f.records[uri] = store.Record{
		URI:   syntax.Make(did, collection, rkey),
		CID:   cid,
		Value: data,
	}
	return uri, cid
}

// Delete removes a record out of band, as account deletion would.
func (f *FakeStore) Delete(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.records, uri)
	for i, u := range f.order {
		if u == uri {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Record returns a copy of the stored record at uri, or nil.
func (f *FakeStore) Record(uri string) *store.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[uri]; ok {
		return &rec
	}
	return nil
}

// Created returns the locators of records in the given collection, in
// creation order.
func (f *FakeStore) Created(did, collection string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var uris []string
	for _, uri := range f.order {
		rec := f.records[uri]
		if rec.URI.DID == did && rec.URI.Collection == collection {
			uris = append(uris, uri)
		}
	}
	return uris
}

func (f *FakeStore) ListCollection(_ context.Context, did, collection string, limit int, cursor string) ([]store.Record, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// A cursor whose record no longer exists restarts the listing from
	// the beginning, matching the Postgres store.
	started := cursor == "" || !f.cursorExists(did, collection, cursor)
	var out []store.Record
	for _, uri := range f.order {
		rec := f.records[uri]
		if rec.URI.DID != did || rec.URI.Collection != collection {
			continue
		}
		if !started {
			if rec.URI.Rkey == cursor || uri == cursor {
				started = true
			} else {
				continue
			}
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeStore) cursorExists(did, collection, cursor string) bool {
	for _, uri := range f.order {
		rec := f.records[uri]
		if rec.URI.DID != did || rec.URI.Collection != collection {
			continue
		}
		if rec.URI.Rkey == cursor || uri == cursor {
			return true
		}
	}
	return false
}

func (f *FakeStore) GetReverseLinks(_ context.Context, target, collection, path string) ([]store.Backlink, error) {
	if f.LinksErr != nil {
		return nil, f.LinksErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var links []store.Backlink
	for _, uri := range f.order {
		rec := f.records[uri]
		if rec.URI.Collection != collection {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(rec.Value, &fields); err != nil {
			continue
		}
		if v, ok := fields[path].(string); ok && v == target {
			links = append(links, store.Backlink{URI: uri, Path: path, Target: target})
		}
	}
	return links, nil
}

func (f *FakeStore) GetRecord(_ context.Context, uri syntax.ATURI) (*store.Record, error) {
	key := uri.String()
	if err, ok := f.GetErr[key]; ok {
		return nil, err
	}

	f.mu.Lock()
	rec, ok := f.records[key]
	f.mu.Unlock()

	if !ok {
		if f.GetHook != nil {
			return f.GetHook(key, nil)
		}
		return nil, store.ErrRecordNotFound
	}
	if f.GetHook != nil {
		return f.GetHook(key, &rec)
	}
	return &rec, nil
}

func (f *FakeStore) Transact(_ context.Context, did string, fn func(tx store.RecordTx) error) (store.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.revSeq++
	t := &fakeTx{store: f, did: did}
	if err := fn(t); err != nil {
		return store.Commit{}, err
	}

	data, _ := json.Marshal(t.written)
	commit := store.Commit{
		DID: did,
		CID: store.ComputeCID(data),
		Rev: fmt.Sprintf("rev-%d", f.revSeq),
	}
	f.Commits = append(f.Commits, commit)
	return commit, nil
}

type fakeTx struct {
	store   *FakeStore
	did     string
	written []string
}

func (t *fakeTx) CreateRecord(_ context.Context, collection string, value any) (syntax.ATURI, string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return syntax.ATURI{}, "", err
	}

	t.store.rkeySeq++
	uri := syntax.Make(t.did, collection, fmt.Sprintf("rkey-%d", t.store.rkeySeq))
	cid := store.ComputeCID(data)

	t.store.records[uri.String()] = store.Record{URI: uri, CID: cid, Value: data}
	t.store.order = append(t.store.order, uri.String())
	t.written = append(t.written, cid)
	return uri, cid, nil
}

func (t *fakeTx) UpdateRecord(_ context.Context, collection, rkey string, value any, swapCID string) (string, error) {
	uri := syntax.Make(t.did, collection, rkey)
	rec, ok := t.store.records[uri.String()]
	if !ok {
		return "", store.ErrRecordNotFound
	}
	if rec.CID != swapCID {
		return "", store.ErrConcurrentWrite
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	rec.CID = store.ComputeCID(data)
	rec.Value = data
	t.store.records[uri.String()] = rec
	t.written = append(t.written, rec.CID)
	return rec.CID, nil
}

// SequencedCommit is one commit observed by a fake collaborator.
type SequencedCommit struct {
	DID    string
	Commit store.Commit
}

// FakeSequencer records sequenced commits.
type FakeSequencer struct {
	mu      sync.Mutex
	Err     error
	Commits []SequencedCommit
}

func (s *FakeSequencer) SequenceCommit(_ context.Context, did string, commit store.Commit) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Commits = append(s.Commits, SequencedCommit{DID: did, Commit: commit})
	return nil
}

// FakeRoots records account root updates.
type FakeRoots struct {
	mu      sync.Mutex
	Err     error
	Updates []SequencedCommit
}

func (r *FakeRoots) UpdateRoot(_ context.Context, did string, commit store.Commit) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates = append(r.Updates, SequencedCommit{DID: did, Commit: commit})
	return nil
}

// FakeResolver serves canned identity documents.
type FakeResolver struct {
	Docs map[string]*identity.Document
	Err  map[string]error
}

// NewFakeResolver creates a resolver with no documents.
func NewFakeResolver() *FakeResolver {
	return &FakeResolver{
		Docs: make(map[string]*identity.Document),
		Err:  make(map[string]error),
	}
}

// AddHandle registers a handle alias for a DID.
func (r *FakeResolver) AddHandle(did, handle string) {
	r.Docs[did] = &identity.Document{
		DID:         did,
		AlsoKnownAs: []string{"at://" + strings.TrimPrefix(handle, "at://")},
	}
}

func (r *FakeResolver) Resolve(_ context.Context, did string) (*identity.Document, error) {
	if err, ok := r.Err[did]; ok {
		return nil, err
	}
	if doc, ok := r.Docs[did]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("identity not found: %s", did)
}
