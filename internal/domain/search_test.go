package domain_test

import (
	"testing"

	"empregozap-engine/internal/domain"
)

func TestParseSearchStatus(t *testing.T) {
	valid := []string{"pending", "scraping", "active", "completed", "error"}
	for _, s := range valid {
		got, err := domain.ParseSearchStatus(s)
		if err != nil {
			t.Errorf("ParseSearchStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseSearchStatus(%q) = %q, want %q", s, got, s)
		}
	}

	if _, err := domain.ParseSearchStatus("running"); err == nil {
		t.Error(`ParseSearchStatus("running") expected error, got nil`)
	}
	if _, err := domain.ParseSearchStatus(""); err == nil {
		t.Error(`ParseSearchStatus("") expected error, got nil`)
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	allowed := [][2]domain.SearchStatus{
		{domain.StatusPending, domain.StatusScraping},
		{domain.StatusScraping, domain.StatusActive},
		{domain.StatusScraping, domain.StatusCompleted},
		{domain.StatusScraping, domain.StatusError},
		{domain.StatusActive, domain.StatusScraping},
		{domain.StatusCompleted, domain.StatusScraping},
		{domain.StatusError, domain.StatusScraping},
	}
	for _, tr := range allowed {
		if !domain.IsTransitionAllowed(tr[0], tr[1]) {
			t.Errorf("transition %s -> %s should be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]domain.SearchStatus{
		{domain.StatusPending, domain.StatusActive},
		{domain.StatusPending, domain.StatusError},
		{domain.StatusActive, domain.StatusCompleted},
		{domain.StatusError, domain.StatusActive},
		{domain.StatusCompleted, domain.StatusActive},
	}
	for _, tr := range denied {
		if domain.IsTransitionAllowed(tr[0], tr[1]) {
			t.Errorf("transition %s -> %s should be denied", tr[0], tr[1])
		}
	}
}

func TestCompletenessScore(t *testing.T) {
	str := func(s string) *string { return &s }
	flt := func(f float64) *float64 { return &f }

	empty := domain.Listing{Role: "Vaga", URL: "https://x"}
	if got := empty.CompletenessScore(); got != 0 {
		t.Errorf("empty listing score = %d, want 0", got)
	}

	full := domain.Listing{
		Role:         "Vaga",
		URL:          "https://x",
		SalaryMin:    flt(1000),
		Seniority:    str("Júnior"),
		ContractType: str("CLT"),
		Description:  str("descrição"),
	}
	if got := full.CompletenessScore(); got != 4 {
		t.Errorf("full listing score = %d, want 4", got)
	}

	blank := domain.Listing{Role: "Vaga", URL: "https://x", Seniority: str("")}
	if got := blank.CompletenessScore(); got != 0 {
		t.Errorf("blank seniority must not count, got %d", got)
	}
}

func TestSameParams(t *testing.T) {
	s := domain.Search{Role: "Engenheiro", City: "São Paulo", State: "SP", Contact: "5511999999999"}

	if !s.SameParams("Engenheiro", "São Paulo", "SP") {
		t.Error("identical params should match")
	}
	if s.SameParams("Analista", "São Paulo", "SP") {
		t.Error("different role must not match")
	}
}
