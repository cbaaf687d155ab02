// Package infojobs searches InfoJobs Brasil: a JSON autocomplete call
// resolves the city to InfoJobs' internal location id, then the listing page
// for that id is parsed.
package infojobs

import (
	"context"
	"encoding/json"
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
	baseURL      = "https://www.infojobs.com.br"
	locationsAPI = baseURL + "/mf-publicarea/api/autocompleteapi/locations"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
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

func (c *Client) Name() string { return "infojobs" }

type locationSuggestions struct {
	Suggestions []struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	} `json:"suggestions"`
}

func (c *Client) Search(ctx context.Context, role, city, state string) ([]source.RawListing, error) {
	locID, err := c.locationID(ctx, city, state)
	if err != nil {
		return nil, err
	}
	if locID == 0 {
		c.log.Warnw("infojobs location not found", "city", city, "state", state)
		return []source.RawListing{}, nil
	}

	listURL := fmt.Sprintf("%s/empregos.aspx?palabra=%s&poblacion=%d&campo=griddate&orden=desc",
		baseURL, url.QueryEscape(role), locID)

	doc, err := c.fetchDoc(ctx, listURL)
	if err != nil {
		return nil, err
	}

	var out []source.RawListing
	doc.Find(".js_vacancyLoad").Each(func(_ int, card *goquery.Selection) {
		title := source.CleanText(card.Find("h2.h3.font-weight-bold").First().Text())
		if title == "" {
			return
		}

		href, _ := card.Find("a[href]").First().Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}

		// Company cell: a link means a named employer; plain text repeating
		// the title or saying "confidencial" means there is none.
		var company string
		confidential := false
		if link := card.Find(".text-body a").First(); link.Length() > 0 {
			company = source.CleanText(link.Text())
		} else {
			text := source.CleanText(card.Find(".text-body").First().Text())
			switch {
			case strings.Contains(strings.ToLower(text), "confidencial"):
				confidential = true
			case !strings.EqualFold(text, title):
				company = text
			}
		}

		var description string
		if snippets := card.Find(".small.text-medium"); snippets.Length() > 0 {
			description = source.CleanText(snippets.Last().Text())
		}

		out = append(out, source.RawListing{
			Role:         title,
			Company:      company,
			City:         city,
			State:        state,
			Description:  description,
			URL:          href,
			Confidential: &confidential,
		})
	})

	c.log.Infow("infojobs search done", "role", role, "found", len(out))
	return out, nil
}

// locationID resolves "São Paulo SP" to the id InfoJobs uses in its search
// URLs. Returns 0 when the city is unknown to InfoJobs.
func (c *Client) locationID(ctx context.Context, city, state string) (int, error) {
	u := locationsAPI + "?query=" + url.QueryEscape(city+" "+state)

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return 0, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("infojobs locations: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return 0, fmt.Errorf("infojobs locations status %d", res.StatusCode)
	}

	var body locationSuggestions
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("infojobs locations decode: %w", err)
	}
	if len(body.Suggestions) == 0 {
		return 0, nil
	}
	return body.Suggestions[0].Data.ID, nil
}

func (c *Client) fetchDoc(ctx context.Context, u string) (*goquery.Document, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infojobs get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("infojobs status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("infojobs parse html: %w", err)
	}
	return doc, nil
}
