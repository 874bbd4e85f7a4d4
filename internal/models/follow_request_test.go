package models

import (
	"testing"
	"time"
)

func TestFollowRequestRecord_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		record  FollowRequestRecord
		wantErr bool
	}{
		{
			name:   "pending request",
			record: FollowRequestRecord{Subject: "did:plc:target", Status: StatusPending, CreatedAt: now},
		},
		{
			name:   "approved request",
			record: FollowRequestRecord{Subject: "did:plc:target", Status: StatusApproved, CreatedAt: now, RespondedAt: &now},
		},
		{
			name:   "denied request",
			record: FollowRequestRecord{Subject: "did:plc:target", Status: StatusDenied, CreatedAt: now, RespondedAt: &now},
		},
		{
			name:    "missing subject",
			record:  FollowRequestRecord{Status: StatusPending, CreatedAt: now},
			wantErr: true,
		},
		{
			name:    "unknown status",
			record:  FollowRequestRecord{Subject: "did:plc:target", Status: "maybe", CreatedAt: now},
			wantErr: true,
		},
		{
			name:    "filter value stored as status",
			record:  FollowRequestRecord{Subject: "did:plc:target", Status: StatusAll, CreatedAt: now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFollowRequestRecord_IsResolved(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusPending, false},
		{StatusApproved, true},
		{StatusDenied, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := &FollowRequestRecord{Status: tt.status}
			if got := r.IsResolved(); got != tt.expected {
				t.Errorf("IsResolved() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidStatusFilter(t *testing.T) {
	tests := []struct {
		filter   string
		expected bool
	}{
		{StatusPending, true},
		{StatusApproved, true},
		{StatusDenied, true},
		{StatusAll, true},
		{"", false},
		{"rejected", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			if got := ValidStatusFilter(tt.filter); got != tt.expected {
				t.Errorf("ValidStatusFilter(%q) = %v, want %v", tt.filter, got, tt.expected)
			}
		})
	}
}
