package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"followgate/internal/models"
	"followgate/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestEnrich_ResolvesHandleAndProfile(t *testing.T) {
	fs := testutil.NewFakeStore()
	resolver := testutil.NewFakeResolver()
	resolver.AddHandle(aliceDID, "alice.example.com")
	fs.Put(t, aliceDID, models.CollectionProfile, "self", models.ProfileRecord{
		DisplayName: strPtr("Alice"),
		Avatar:      strPtr("https://cdn.example.com/alice.png"),
	})

	e := NewEnricher(fs, resolver, 2)
	views := e.enrich(context.Background(), []entry{{
		uri:       "at://" + aliceDID + "/" + models.CollectionFollowRequest + "/r1",
		cid:       "cid1",
		requester: aliceDID,
		record:    pendingRequest(actorDID, time.Now().UTC()),
	}})

	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	req := views[0].Requester
	if req.DID != aliceDID {
		t.Errorf("did = %q, want %q", req.DID, aliceDID)
	}
	if req.Handle != "alice.example.com" {
		t.Errorf("handle = %q, want alice.example.com", req.Handle)
	}
	if req.DisplayName == nil || *req.DisplayName != "Alice" {
		t.Errorf("displayName = %v, want Alice", req.DisplayName)
	}
	if req.Avatar == nil || *req.Avatar != "https://cdn.example.com/alice.png" {
		t.Errorf("avatar = %v", req.Avatar)
	}
}

func TestEnrich_DegradesPerEntry(t *testing.T) {
	fs := testutil.NewFakeStore()
	resolver := testutil.NewFakeResolver()
	resolver.AddHandle(aliceDID, "alice.example.com")
	resolver.Err[bobDID] = errors.New("resolution timeout")

	e := NewEnricher(fs, resolver, 2)
	views := e.enrich(context.Background(), []entry{
		{uri: "u1", cid: "c1", requester: aliceDID, record: pendingRequest(actorDID, time.Now().UTC())},
		{uri: "u2", cid: "c2", requester: bobDID, record: pendingRequest(actorDID, time.Now().UTC())},
	})

	if views[0].Requester.Handle != "alice.example.com" {
		t.Errorf("entry 1 handle = %q, want alice.example.com", views[0].Requester.Handle)
	}

	// The failing entry degrades to bare identifiers, never disappears.
	if views[1].Requester.DID != bobDID || views[1].Requester.Handle != bobDID {
		t.Errorf("degraded requester = %+v, want did and handle both %q", views[1].Requester, bobDID)
	}
	if views[1].Requester.DisplayName != nil || views[1].Requester.Avatar != nil {
		t.Error("degraded entry should have no profile fields")
	}
}

func TestEnrich_PreservesInputOrder(t *testing.T) {
	fs := testutil.NewFakeStore()
	resolver := testutil.NewFakeResolver()

	var entries []entry
	for i := 0; i < 25; i++ {
		did := fmt.Sprintf("did:plc:user%02d", i)
		resolver.AddHandle(did, fmt.Sprintf("user%02d.example.com", i))
		entries = append(entries, entry{
			uri:       fmt.Sprintf("at://%s/%s/r", did, models.CollectionFollowRequest),
			cid:       fmt.Sprintf("cid%02d", i),
			requester: did,
			record:    pendingRequest(actorDID, time.Now().UTC()),
		})
	}

	e := NewEnricher(fs, resolver, 4)
	views := e.enrich(context.Background(), entries)

	if len(views) != len(entries) {
		t.Fatalf("got %d views, want %d", len(views), len(entries))
	}
	for i, view := range views {
		if view.URI != entries[i].uri {
			t.Errorf("view %d uri = %q, want %q", i, view.URI, entries[i].uri)
		}
		if view.Requester.DID != entries[i].requester {
			t.Errorf("view %d requester = %q, want %q", i, view.Requester.DID, entries[i].requester)
		}
	}
}

func TestEnrich_EmptyInput(t *testing.T) {
	e := NewEnricher(testutil.NewFakeStore(), testutil.NewFakeResolver(), 2)
	views := e.enrich(context.Background(), nil)
	if len(views) != 0 {
		t.Errorf("got %d views, want 0", len(views))
	}
}
