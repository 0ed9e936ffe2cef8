package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
)

const scoreEventsPath = "/api/v1/score-events"

// Client submits score events to a running server.
type Client struct {
	baseURL string
	http    *http.Client
	workers int
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, workers int) *Client {
	if workers < 1 {
		workers = 1
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		workers: workers,
	}
}

// SubmitStats counts the outcome of a submission run.
type SubmitStats struct {
	Submitted int64         `json:"submitted"`
	Accepted  int64         `json:"accepted"`
	Duplicate int64         `json:"duplicate"`
	Failed    int64         `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

type ack struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Submit posts events concurrently. Rejected events are counted as failed;
// only transport errors and cancellation abort the run.
func (c *Client) Submit(ctx context.Context, events []model.ScoreEvent) (SubmitStats, error) {
	log := logger.Get().Named("seed.client")
	start := time.Now()
	var submitted, accepted, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, e := range events {
		g.Go(func() error {
			submitted.Add(1)
			a, status, err := c.post(gctx, e)
			switch {
			case err != nil:
				return err
			case status == http.StatusAccepted:
				accepted.Add(1)
			case status == http.StatusOK && a.Duplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
				log.Debug(gctx, "event rejected", logger.String("id", e.ID), logger.Int("status", status))
			}
			return nil
		})
	}
	err := g.Wait()

	stats := SubmitStats{
		Submitted: submitted.Load(),
		Accepted:  accepted.Load(),
		Duplicate: duplicate.Load(),
		Failed:    failed.Load(),
		Duration:  time.Since(start),
	}
	log.Info(ctx, "score events submitted",
		logger.Int64("submitted", stats.Submitted),
		logger.Int64("accepted", stats.Accepted),
		logger.Int64("duplicate", stats.Duplicate),
		logger.Int64("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	return stats, nil
}

func (c *Client) post(ctx context.Context, e model.ScoreEvent) (ack, int, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return ack{}, 0, fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scoreEventsPath, bytes.NewReader(body))
	if err != nil {
		return ack{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ack{}, 0, fmt.Errorf("post event %s: %w", e.ID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ack{}, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	var a ack
	if resp.StatusCode < http.StatusBadRequest {
		if err := json.Unmarshal(raw, &a); err != nil {
			return ack{}, resp.StatusCode, fmt.Errorf("decode ack: %w", err)
		}
	}
	return a, resp.StatusCode, nil
}
