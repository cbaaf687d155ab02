// Package notify delivers found listings to the user over WhatsApp through
// an Evolution API instance.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

// Sender is the messaging channel the dispatcher writes to.
type Sender interface {
	SendText(ctx context.Context, number, text string) error
}

// WhatsAppClient talks to the Evolution API sendText endpoint.
type WhatsAppClient struct {
	baseURL  string
	instance string
	apiKey   func() (string, error)
	hc       *http.Client
	log      *zap.SugaredLogger
}

func NewWhatsAppClient(baseURL, instance string, apiKey func() (string, error), log *zap.SugaredLogger) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:  baseURL,
		instance: instance,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

type sendTextPayload struct {
	Number  string `json:"number"`
	Options struct {
		Delay       int    `json:"delay"`
		Presence    string `json:"presence"`
		LinkPreview bool   `json:"linkPreview"`
	} `json:"options"`
	TextMessage struct {
		Text string `json:"text"`
	} `json:"textMessage"`
}

func (c *WhatsAppClient) SendText(ctx context.Context, number, text string) error {
	key, err := c.apiKey()
	if err != nil {
		return fmt.Errorf("evolution api key: %w", err)
	}

	payload := sendTextPayload{Number: number}
	payload.Options.Delay = 1200
	payload.Options.Presence = "composing"
	payload.Options.LinkPreview = false
	payload.TextMessage.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendText: %w", err)
	}

	u := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("apikey", key)

			res, err := c.hc.Do(req)
			if err != nil {
				return fmt.Errorf("evolution post: %w", err)
			}
			defer res.Body.Close()
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))

			switch {
			case res.StatusCode < 300:
				return nil
			case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
				return retry.Unrecoverable(fmt.Errorf("evolution status %d", res.StatusCode))
			default:
				return fmt.Errorf("evolution status %d", res.StatusCode)
			}
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warnw("whatsapp send retry", "attempt", n+1, "error", err)
		}),
	)
}
