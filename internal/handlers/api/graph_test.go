package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"followgate/internal/config"
	"followgate/internal/graph"
	"followgate/internal/middleware"
	"followgate/internal/models"
	"followgate/internal/testutil"
)

const (
	testSecret = "handler-test-secret"
	actorDID   = "did:plc:target"
	aliceDID   = "did:plc:alice"
)

// newTestApp builds a Fiber app with the production auth + handler wiring
// over in-memory fakes.
func newTestApp(t *testing.T, fs *testutil.FakeStore) *fiber.App {
	t.Helper()

	authMiddleware, err := middleware.NewAuthMiddleware(context.Background(), &config.Config{
		AuthSecret: testSecret,
	})
	if err != nil {
		t.Fatalf("init auth middleware: %v", err)
	}

	enricher := graph.NewEnricher(fs, testutil.NewFakeResolver(), 2)
	handler := NewGraphHandler(
		graph.NewDirectory(fs, enricher),
		graph.NewCoordinator(fs, &testutil.FakeSequencer{}, &testutil.FakeRoots{}),
	)

	app := fiber.New()
	app.Get("/xrpc/app.followgate.graph.listFollowRequests",
		authMiddleware.RequireActor, handler.ListFollowRequests)
	app.Post("/xrpc/app.followgate.graph.respondToFollowRequest",
		authMiddleware.RequireActor, handler.RespondToFollowRequest)
	return app
}

func signToken(t *testing.T, did string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   did,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func seedPending(t *testing.T, fs *testutil.FakeStore) string {
	t.Helper()
	uri, _ := fs.Put(t, aliceDID, models.CollectionFollowRequest, "req1", models.FollowRequestRecord{
		Type:      models.CollectionFollowRequest,
		Subject:   actorDID,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	return uri
}

func TestListFollowRequests_RequiresAuth(t *testing.T) {
	app := newTestApp(t, testutil.NewFakeStore())

	req, _ := http.NewRequest("GET", "/xrpc/app.followgate.graph.listFollowRequests", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListFollowRequests_ReturnsPage(t *testing.T) {
	fs := testutil.NewFakeStore()
	uri := seedPending(t, fs)
	app := newTestApp(t, fs)

	req, _ := http.NewRequest("GET", "/xrpc/app.followgate.graph.listFollowRequests", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, actorDID))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var page models.FollowRequestPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Requests) != 1 || page.Requests[0].URI != uri {
		t.Fatalf("page = %+v, want single request %s", page.Requests, uri)
	}
}

func TestListFollowRequests_RejectsBadLimit(t *testing.T) {
	app := newTestApp(t, testutil.NewFakeStore())

	for _, limit := range []string{"0", "-1", "abc"} {
		t.Run(limit, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/xrpc/app.followgate.graph.listFollowRequests?limit="+limit, nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, actorDID))

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestRespondToFollowRequest_Approve(t *testing.T) {
	fs := testutil.NewFakeStore()
	uri := seedPending(t, fs)
	app := newTestApp(t, fs)

	body := `{"requestUri":"` + uri + `","response":"approve"}`
	req, _ := http.NewRequest("POST", "/xrpc/app.followgate.graph.respondToFollowRequest", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, actorDID))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var result models.RespondResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Request.URI != uri {
		t.Errorf("request uri = %q, want %q", result.Request.URI, uri)
	}
	if result.FollowRecord == nil {
		t.Error("followRecord absent on approval")
	}
}

func TestRespondToFollowRequest_ErrorMapping(t *testing.T) {
	fs := testutil.NewFakeStore()
	uri := seedPending(t, fs)

	tests := []struct {
		name       string
		actor      string
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "invalid response value",
			actor:      actorDID,
			body:       `{"requestUri":"` + uri + `","response":"maybe"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidResponse",
		},
		{
			name:       "unknown request",
			actor:      actorDID,
			body:       `{"requestUri":"at://` + aliceDID + `/` + models.CollectionFollowRequest + `/nope","response":"approve"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "RequestNotFound",
		},
		{
			name:       "wrong actor",
			actor:      "did:plc:mallory",
			body:       `{"requestUri":"` + uri + `","response":"approve"}`,
			wantStatus: http.StatusUnauthorized,
			wantKind:   "NotAuthorized",
		},
		{
			name:       "malformed body",
			actor:      actorDID,
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidRequest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, fs)

			req, _ := http.NewRequest("POST", "/xrpc/app.followgate.graph.respondToFollowRequest", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+signToken(t, tt.actor))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var wire struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if wire.Error != tt.wantKind {
				t.Errorf("error kind = %q, want %q", wire.Error, tt.wantKind)
			}
		})
	}
}
