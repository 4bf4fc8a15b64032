// Package offline persists invoice submissions that could not reach the
// server and replays them once connectivity returns.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

// SubmitFunc is the submission path shared with online checkout.
type SubmitFunc func(ctx context.Context, sub erp.InvoiceSubmission) error

// Queue is a durable FIFO of pending invoice submissions backed by a single
// JSON file. Queues may be shared across TUI sessions, so all operations
// lock.
type Queue struct {
	mu   sync.Mutex
	path string
}

// Open creates a queue over the given file path. The file is created lazily
// on first enqueue.
func Open(path string) *Queue {
	return &Queue{path: path}
}

// Enqueue appends the submission to the persisted list. A submission id is
// assigned when missing so the backend can deduplicate replays.
func (q *Queue) Enqueue(sub erp.InvoiceSubmission) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}

	pending, err := q.load()
	if err != nil {
		return err
	}
	pending = append(pending, sub)
	return q.store(pending)
}

// Len returns the number of pending submissions.
func (q *Queue) Len() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load()
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// FlushResult reports what a flush attempt accomplished.
type FlushResult struct {
	Submitted int
	Remaining int
}

// Flush replays pending submissions in original order through submit.
// Successes are removed; failed submissions stay in the persisted list for
// the next flush instead of being dropped.
func (q *Queue) Flush(ctx context.Context, submit SubmitFunc) (FlushResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load()
	if err != nil {
		return FlushResult{}, err
	}
	if len(pending) == 0 {
		return FlushResult{}, nil
	}

	var failed []erp.InvoiceSubmission
	submitted := 0
	for _, sub := range pending {
		if err := submit(ctx, sub); err != nil {
			failed = append(failed, sub)
			continue
		}
		submitted++
	}

	if err := q.store(failed); err != nil {
		return FlushResult{}, err
	}
	return FlushResult{Submitted: submitted, Remaining: len(failed)}, nil
}

func (q *Queue) load() ([]erp.InvoiceSubmission, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading queue: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var pending []erp.InvoiceSubmission
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("decoding queue: %w", err)
	}
	return pending, nil
}

func (q *Queue) store(pending []erp.InvoiceSubmission) error {
	if len(pending) == 0 {
		if err := os.Remove(q.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clearing queue: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	if err := os.WriteFile(q.path, data, 0600); err != nil {
		return fmt.Errorf("writing queue: %w", err)
	}
	return nil
}
