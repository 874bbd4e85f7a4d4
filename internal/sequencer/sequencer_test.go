package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFlushDeadline(t *testing.T) {
	t.Run("no deadline uses the default", func(t *testing.T) {
		d, err := flushDeadline(context.Background())
		if err != nil {
			t.Fatalf("flushDeadline: %v", err)
		}
		if d != 3*time.Second {
			t.Errorf("deadline = %v, want 3s", d)
		}
	})

	t.Run("short deadline bounds the wait", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		d, err := flushDeadline(ctx)
		if err != nil {
			t.Fatalf("flushDeadline: %v", err)
		}
		if d <= 0 || d > 100*time.Millisecond {
			t.Errorf("deadline = %v, want in (0, 100ms]", d)
		}
	})

	t.Run("long deadline is capped", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		d, err := flushDeadline(ctx)
		if err != nil {
			t.Fatalf("flushDeadline: %v", err)
		}
		if d != 3*time.Second {
			t.Errorf("deadline = %v, want 3s", d)
		}
	})

	t.Run("expired context yields its error", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		if _, err := flushDeadline(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want DeadlineExceeded", err)
		}
	})
}
