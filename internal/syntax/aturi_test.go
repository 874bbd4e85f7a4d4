package syntax

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ATURI
		wantErr bool
	}{
		{
			name: "valid uri",
			raw:  "at://did:plc:abc123/app.followgate.graph.followRequest/3kxyz",
			want: ATURI{
				DID:        "did:plc:abc123",
				Collection: "app.followgate.graph.followRequest",
				Rkey:       "3kxyz",
			},
		},
		{
			name: "valid web did",
			raw:  "at://did:web:example.com/app.followgate.graph.follow/abc",
			want: ATURI{
				DID:        "did:web:example.com",
				Collection: "app.followgate.graph.follow",
				Rkey:       "abc",
			},
		},
		{name: "missing scheme", raw: "did:plc:abc/coll/rkey", wantErr: true},
		{name: "wrong scheme", raw: "https://did:plc:abc/coll/rkey", wantErr: true},
		{name: "missing rkey", raw: "at://did:plc:abc/coll", wantErr: true},
		{name: "extra segment", raw: "at://did:plc:abc/coll/rkey/extra", wantErr: true},
		{name: "empty collection", raw: "at://did:plc:abc//rkey", wantErr: true},
		{name: "empty rkey", raw: "at://did:plc:abc/coll/", wantErr: true},
		{name: "authority not a did", raw: "at://alice.example.com/coll/rkey", wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	raw := "at://did:plc:abc123/app.followgate.graph.followRequest/3kxyz"
	uri, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if uri.String() != raw {
		t.Errorf("String() = %q, want %q", uri.String(), raw)
	}
}

func TestMake(t *testing.T) {
	uri := Make("did:plc:abc", "app.followgate.actor.profile", "self")
	want := "at://did:plc:abc/app.followgate.actor.profile/self"
	if uri.String() != want {
		t.Errorf("Make().String() = %q, want %q", uri.String(), want)
	}
}
