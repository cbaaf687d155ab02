// Package indeed searches br.indeed.com result pages.
package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"empregozap-engine/internal/source"
)

const (
	baseURL   = "https://br.indeed.com"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

type Client struct {
	hc      *http.Client
	limiter *source.HostLimiter
	log     *zap.SugaredLogger
}

func New(limiter *source.HostLimiter, log *zap.SugaredLogger) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (c *Client) Name() string { return "indeed" }

func (c *Client) Search(ctx context.Context, role, city, state string) ([]source.RawListing, error) {
	u := fmt.Sprintf("%s/jobs?q=%s&l=%s",
		baseURL,
		url.QueryEscape(role),
		url.QueryEscape(city+", "+state),
	)

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indeed get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("indeed status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("indeed parse html: %w", err)
	}

	var out []source.RawListing
	doc.Find(".job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		title := source.CleanText(card.Find(".jobTitle span").First().Text())
		href, _ := card.Find("h2.jobTitle a").First().Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}

		out = append(out, source.RawListing{
			Role:        title,
			Company:     source.CleanText(card.Find(`[data-testid="company-name"]`).First().Text()),
			City:        city,
			State:       state,
			Description: source.CleanText(card.Find(".job-snippet").First().Text()),
			URL:         href,
		})
	})

	c.log.Infow("indeed search done", "role", role, "found", len(out))
	return out, nil
}
