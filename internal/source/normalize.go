package source

import (
	"strings"

	"empregozap-engine/internal/domain"
)

// Normalize maps one raw provider result onto the canonical Listing. It is
// total: malformed input degrades to a Listing with nulled optional fields,
// never a dropped record or a panic. Remote and confidential flags are
// derived from the text when the provider doesn't state them.
func Normalize(raw RawListing, sourceName string) domain.Listing {
	l := domain.Listing{
		Role:         CleanText(raw.Role),
		URL:          strings.TrimSpace(raw.URL),
		Source:       sourceName,
		Company:      optional(raw.Company),
		City:         optional(raw.City),
		State:        optional(strings.ToUpper(strings.TrimSpace(raw.State))),
		Description:  optional(raw.Description),
		ContractType: optional(raw.ContractType),
		Seniority:    optional(raw.Seniority),
		PublishedAt:  raw.PublishedAt,
		SalaryMin:    raw.SalaryMin,
		SalaryMax:    raw.SalaryMax,
	}

	if raw.Remote != nil {
		l.Remote = *raw.Remote
	} else {
		l.Remote = looksRemote(raw.Role, raw.Description)
	}

	if raw.Confidential != nil {
		l.Confidential = *raw.Confidential
	} else {
		l.Confidential = looksConfidential(raw.Company, raw.Description)
	}

	return l
}

func optional(s string) *string {
	s = CleanText(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil
	}
	return &s
}

func looksRemote(role, description string) bool {
	blob := strings.ToLower(role + " " + description)
	return strings.Contains(blob, "home office") ||
		strings.Contains(blob, "remoto") ||
		strings.Contains(blob, "remote") ||
		strings.Contains(blob, "trabalho remoto")
}

func looksConfidential(company, description string) bool {
	blob := strings.ToLower(company + " " + description)
	return strings.Contains(blob, "confidencial") ||
		strings.Contains(blob, "confidential")
}

// CleanText collapses whitespace and strips non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
