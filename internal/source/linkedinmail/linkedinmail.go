// Package linkedinmail turns LinkedIn job-alert emails into listings. The
// alerts arrive in a configured mailbox; each digest email carries a handful
// of /jobs/view/ links with title, company and location around them.
package linkedinmail

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"
	"go.uber.org/zap"

	"empregozap-engine/internal/source"
)

const (
	alertFromAddr = "jobalerts-noreply@linkedin.com"
	maxMessages   = 20
)

var reJobID = regexp.MustCompile(`/jobs/view/(\d+)`)

// PasswordFunc supplies the IMAP password at dial time so the credential
// never sits in config.
type PasswordFunc func() (string, error)

type Client struct {
	addr     string
	username string
	mailbox  string
	password PasswordFunc
	log      *zap.SugaredLogger
}

func New(host string, port int, username, mailbox string, password PasswordFunc, log *zap.SugaredLogger) *Client {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Client{
		addr:     fmt.Sprintf("%s:%d", host, port),
		username: username,
		mailbox:  mailbox,
		password: password,
		log:      log,
	}
}

func (c *Client) Name() string { return "linkedin" }

// Search reads unseen alert digests and keeps the openings whose title
// matches the requested role. City and state are best-effort: LinkedIn
// alerts already reflect the user's saved location, so location text is
// passed through rather than filtered.
func (c *Client) Search(ctx context.Context, role, city, state string) ([]source.RawListing, error) {
	password, err := c.password()
	if err != nil {
		return nil, fmt.Errorf("imap password: %w", err)
	}

	cli, err := dialAndLogin(ctx, c.addr, c.username, password)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(cli)

	msgs, err := fetchUnseenAlerts(ctx, cli, c.mailbox, alertFromAddr, maxMessages)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		c.log.Infow("linkedin search done", "role", role, "found", 0)
		return nil, nil
	}

	wantRole := source.FoldForMatch(role)
	byID := map[string]source.RawListing{}
	var processed []imap.UID

	for _, m := range msgs {
		html, err := extractHTML(m.Raw)
		if err != nil {
			c.log.Warnw("linkedin alert decode failed", "uid", m.UID, "error", err)
			continue
		}
		jobs, err := parseAlertHTML(html)
		if err != nil {
			c.log.Warnw("linkedin alert parse failed", "uid", m.UID, "error", err)
			continue
		}
		for id, j := range jobs {
			if wantRole != "" && !strings.Contains(source.FoldForMatch(j.Role), wantRole) {
				continue
			}
			if prev, ok := byID[id]; ok {
				byID[id] = mergeListing(prev, j)
			} else {
				byID[id] = j
			}
		}
		processed = append(processed, m.UID)
	}

	if err := markSeen(cli, processed); err != nil {
		c.log.Warnw("linkedin mark seen failed", "error", err)
	}

	out := make([]source.RawListing, 0, len(byID))
	for _, j := range byID {
		if j.City == "" {
			j.City = city
		}
		if j.State == "" {
			j.State = state
		}
		out = append(out, j)
	}

	c.log.Infow("linkedin search done", "role", role, "emails", len(processed), "found", len(out))
	return out, nil
}

// parseAlertHTML extracts the job cards from one digest email, keyed by the
// numeric job id so repeats across digests collapse.
func parseAlertHTML(html string) (map[string]source.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse alert html: %w", err)
	}

	jobs := map[string]source.RawListing{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "linkedin.com") || !strings.Contains(href, "/jobs/view/") {
			return
		}
		m := reJobID.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]

		j := source.RawListing{
			Role: source.CleanText(a.Text()),
			URL:  canonicalJobURL(id),
		}

		// The anchor sits inside a card table; a sibling <p> usually holds
		// "Company · City, State".
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := source.CleanText(p.Text())
			if text == "" || !strings.Contains(text, " · ") {
				return true
			}
			parts := strings.SplitN(text, " · ", 2)
			j.Company = source.CleanText(parts[0])
			cityPart, statePart := splitLocation(parts[1])
			j.City = cityPart
			j.State = statePart
			return false
		})

		if prev, ok := jobs[id]; ok {
			jobs[id] = mergeListing(prev, j)
		} else {
			jobs[id] = j
		}
	})
	return jobs, nil
}

// canonicalJobURL strips tracking params the alert links carry.
func canonicalJobURL(id string) string {
	return (&url.URL{
		Scheme: "https",
		Host:   "www.linkedin.com",
		Path:   "/jobs/view/" + id,
	}).String()
}

func splitLocation(loc string) (city, state string) {
	loc = source.CleanText(loc)
	if i := strings.LastIndex(loc, ", "); i >= 0 {
		return loc[:i], source.StateAbbreviation(loc[i+2:])
	}
	return loc, ""
}

// mergeListing keeps the richer field from either side. Alert emails repeat
// each job as a logo link and a text link; only one has a usable title.
func mergeListing(a, b source.RawListing) source.RawListing {
	if betterTitle(b.Role, a.Role) {
		a.Role = b.Role
	}
	if a.Company == "" {
		a.Company = b.Company
	}
	if a.City == "" {
		a.City = b.City
	}
	if a.State == "" {
		a.State = b.State
	}
	return a
}

func betterTitle(candidate, current string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	if current == "" {
		return true
	}
	return len(candidate) > len(current)
}
