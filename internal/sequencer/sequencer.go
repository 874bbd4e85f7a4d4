// Package sequencer emits committed transactions into the ordered commit
// stream consumed by downstream services.
package sequencer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"followgate/internal/metrics"
	"followgate/internal/store"
)

// Sequencer appends a commit to an account's event stream.
type Sequencer interface {
	SequenceCommit(ctx context.Context, did string, commit store.Commit) error
}

// NATS publishes commit events to per-account subjects.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// Connect dials the NATS server and returns a sequencer publishing under
// subjectPrefix.
func Connect(url, name, subjectPrefix string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.Timeout(3*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATS{conn: conn, subject: subjectPrefix}, nil
}

type commitEvent struct {
	DID  string    `json:"did"`
	CID  string    `json:"cid"`
	Rev  string    `json:"rev"`
	Time time.Time `json:"time"`
}

// SequenceCommit publishes the commit event and flushes it to the server so
// the caller observes delivery failures synchronously.
func (n *NATS) SequenceCommit(ctx context.Context, did string, commit store.Commit) error {
	data, err := json.Marshal(commitEvent{
		DID:  did,
		CID:  commit.CID,
		Rev:  commit.Rev,
		Time: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.subject + "." + did)
	msg.Data = data
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("sequence commit: %w", err)
	}

	deadline, err := flushDeadline(ctx)
	if err != nil {
		return fmt.Errorf("sequence commit: %w", err)
	}
	if err := n.conn.FlushTimeout(deadline); err != nil {
		return fmt.Errorf("sequence commit: %w", err)
	}

	metrics.RecordSequencedCommit()
	return nil
}

// flushDeadline bounds the flush wait by the caller's remaining deadline.
// An already-expired context yields its error instead of a negative wait.
func flushDeadline(ctx context.Context) (time.Duration, error) {
	const maxWait = 3 * time.Second

	d, ok := ctx.Deadline()
	if !ok {
		return maxWait, nil
	}
	remaining := time.Until(d)
	if remaining <= 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 0, context.DeadlineExceeded
	}
	if remaining < maxWait {
		return remaining, nil
	}
	return maxWait, nil
}

// Close drains the connection, letting buffered events flush.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
