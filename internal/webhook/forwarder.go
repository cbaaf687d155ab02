// Package webhook pushes each run's listings to an external HTTP consumer.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/metrics"
)

// payload is the contract downstream consumers depend on. Field names are
// frozen; listings serialize with their pt-BR JSON tags.
type payload struct {
	SearchID  int64            `json:"search_id"`
	UserID    string           `json:"user_id"`
	Jobs      []domain.Listing `json:"jobs"`
	Timestamp string           `json:"timestamp"`
}

type Forwarder struct {
	url    string
	apiKey func() (string, error)
	hc     *http.Client
	met    *metrics.Set
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewForwarder(url string, timeout time.Duration, apiKey func() (string, error), met *metrics.Set, log *zap.SugaredLogger) *Forwarder {
	return &Forwarder{
		url:    url,
		apiKey: apiKey,
		hc:     &http.Client{Timeout: timeout},
		met:    met,
		log:    log,
		now:    time.Now,
	}
}

// Forward posts a run's listings. Listings missing required fields are
// dropped with a warning rather than poisoning the whole batch. A missing
// webhook URL disables forwarding silently.
func (f *Forwarder) Forward(ctx context.Context, s domain.Search, listings []domain.Listing) error {
	if f.url == "" {
		return nil
	}

	valid := listings[:0:0]
	for _, l := range listings {
		if err := validateListing(l); err != nil {
			f.log.Warnw("listing rejected for webhook", "url", l.URL, "error", err)
			continue
		}
		valid = append(valid, l)
	}
	if len(valid) == 0 {
		return nil
	}

	body, err := json.Marshal(payload{
		SearchID:  s.ID,
		UserID:    s.UserID,
		Jobs:      valid,
		Timestamp: f.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	key := ""
	if f.apiKey != nil {
		if key, err = f.apiKey(); err != nil {
			f.log.Warnw("webhook api key unavailable, sending without", "error", err)
			key = ""
		}
	}

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			if key != "" {
				req.Header.Set("X-API-Key", key)
			}

			res, err := f.hc.Do(req)
			if err != nil {
				return fmt.Errorf("webhook post: %w", err)
			}
			defer res.Body.Close()
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))

			if res.StatusCode >= 300 {
				err := fmt.Errorf("webhook status %d", res.StatusCode)
				if res.StatusCode >= 400 && res.StatusCode < 500 {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			f.log.Warnw("webhook retry", "attempt", n+1, "error", err)
		}),
	)

	if f.met != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		f.met.WebhookCalls.WithLabelValues(status).Inc()
	}
	if err != nil {
		return err
	}

	f.log.Infow("webhook delivered", "search_id", s.ID, "user_id", s.UserID, "jobs", len(valid))
	return nil
}

func validateListing(l domain.Listing) error {
	switch {
	case l.Role == "":
		return errors.New("missing role")
	case l.URL == "":
		return errors.New("missing url")
	case l.Source == "":
		return errors.New("missing source")
	default:
		return nil
	}
}
