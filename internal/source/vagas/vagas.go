// Package vagas searches Vagas.com.br listing pages.
package vagas

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
	baseURL   = "https://www.vagas.com.br"
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

func (c *Client) Name() string { return "vagas" }

func (c *Client) Search(ctx context.Context, role, city, state string) ([]source.RawListing, error) {
	u := fmt.Sprintf("%s/vagas-de-%s-%s-%s?ordenar_por=mais_recentes",
		baseURL,
		url.PathEscape(strings.ToLower(role)),
		url.PathEscape(strings.ToLower(city)),
		url.PathEscape(strings.ToLower(state)),
	)

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vagas get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("vagas status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("vagas parse html: %w", err)
	}

	var out []source.RawListing
	doc.Find("li.vaga").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("h2.cargo a").First()
		title := source.CleanText(link.Text())
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}

		company := source.CleanText(card.Find("span.emprVaga").First().Text())
		description := source.CleanText(card.Find("div.detalhes p").First().Text())
		seniority := source.CleanText(card.Find("span.nivelVaga").First().Text())

		listing := source.RawListing{
			Role:        title,
			Company:     company,
			City:        city,
			State:       state,
			Description: description,
			URL:         href,
			Seniority:   seniority,
		}

		// "há 2 dias", "ontem", "hoje": only day-granular hints exist.
		if posted := parseRelativeDate(card.Find("span.data-publicacao").First().Text()); posted != nil {
			listing.PublishedAt = posted
		}

		out = append(out, listing)
	})

	c.log.Infow("vagas search done", "role", role, "found", len(out))
	return out, nil
}

func parseRelativeDate(raw string) *time.Time {
	raw = strings.ToLower(source.CleanText(raw))
	now := time.Now()
	switch {
	case raw == "hoje":
		return &now
	case raw == "ontem":
		t := now.AddDate(0, 0, -1)
		return &t
	case strings.HasPrefix(raw, "há "):
		var days int
		if _, err := fmt.Sscanf(raw, "há %d", &days); err == nil && days > 0 {
			t := now.AddDate(0, 0, -days)
			return &t
		}
	}
	return nil
}
