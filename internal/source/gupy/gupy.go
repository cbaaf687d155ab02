// Package gupy searches the Gupy job portal through its public JSON API.
package gupy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"empregozap-engine/internal/source"
)

const apiURL = "https://portal.api.gupy.io/api/job"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// typeTranslation maps Gupy vacancy type codes to the pt-BR contract names
// users see in messages.
var typeTranslation = map[string]string{
	"vacancy_type_apprentice":  "Aprendiz",
	"vacancy_type_associate":   "Associado",
	"vacancy_type_talent_pool": "Banco de Talentos",
	"vacancy_type_effective":   "CLT",
	"vacancy_type_internship":  "Estágio",
	"vacancy_type_summer":      "Temporário de Verão",
	"vacancy_type_temporary":   "Temporário",
	"vacancy_type_outsource":   "Terceirizado",
	"vacancy_type_trainee":     "Trainee",
	"vacancy_type_volunteer":   "Voluntário",
	"vacancy_legal_entity":     "PJ",
	"vacancy_type_lecturer":    "Professor / Instrutor",
	"vacancy_type_freelancer":  "Freelancer",
	"vacancy_type_autonomous":  "Autônomo",
}

type Client struct {
	hc      *http.Client
	limiter *source.HostLimiter
	log     *zap.SugaredLogger
}

func New(limiter *source.HostLimiter, log *zap.SugaredLogger) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (c *Client) Name() string { return "gupy" }

type gupyJob struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CareerPageName string `json:"careerPageName"`
	City           string `json:"city"`
	State          string `json:"state"`
	Description    string `json:"description"`
	JobURL         string `json:"jobUrl"`
	Type           string `json:"type"`
	IsRemoteWork   bool   `json:"isRemoteWork"`
	PublishedDate  string `json:"publishedDate"`
}

type gupyResponse struct {
	Data []gupyJob `json:"data"`
}

func (c *Client) Search(ctx context.Context, role, city, state string) ([]source.RawListing, error) {
	u := fmt.Sprintf("%s?name=%s&offset=0&limit=15", apiURL, url.QueryEscape(role))

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gupy get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("gupy status %d", res.StatusCode)
	}

	var body gupyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("gupy decode: %w", err)
	}

	// The API ignores location, so openings older than 30 days or outside
	// the requested city/state are filtered here.
	minDate := time.Now().AddDate(0, 0, -30)
	wantCity := source.FoldForMatch(city)
	wantState := source.StateAbbreviation(state)

	var out []source.RawListing
	for _, j := range body.Data {
		published, err := time.Parse(time.RFC3339, j.PublishedDate)
		if err != nil || published.Before(minDate) {
			continue
		}
		if wantCity != "" {
			jc := source.FoldForMatch(j.City)
			if jc != "" && !strings.Contains(jc, wantCity) && !strings.Contains(wantCity, jc) {
				continue
			}
		}
		if wantState != "" {
			if js := source.StateAbbreviation(j.State); js != "" && js != wantState {
				continue
			}
		}

		jobURL := j.JobURL
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://vaga.gupy.io/%d", j.ID)
		}

		remote := j.IsRemoteWork
		confidential := j.CareerPageName == ""

		out = append(out, source.RawListing{
			Role:         j.Name,
			Company:      j.CareerPageName,
			City:         j.City,
			State:        source.StateAbbreviation(j.State),
			Description:  j.Description,
			URL:          jobURL,
			ContractType: translateType(j.Type),
			Remote:       &remote,
			Confidential: &confidential,
			PublishedAt:  &published,
		})
	}

	c.log.Infow("gupy search done", "role", role, "found", len(out))
	return out, nil
}

func translateType(t string) string {
	if t == "" {
		return ""
	}
	if pt, ok := typeTranslation[t]; ok {
		return pt
	}
	return t
}
