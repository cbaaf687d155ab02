package domain

import "time"

// Listing is one canonical, deduplicated job opening. Optional fields are
// pointers so that "unknown" survives round-trips as null rather than a zero
// value. The JSON names match the payload the webhook consumer already
// speaks (pt-BR column names inherited from the product).
type Listing struct {
	ID           int64      `json:"id"`
	Role         string     `json:"cargo"`
	Company      *string    `json:"empresa"`
	City         *string    `json:"cidade"`
	State        *string    `json:"estado"`
	Description  *string    `json:"descricao"`
	URL          string     `json:"url"`
	Source       string     `json:"origem"`
	ContractType *string    `json:"tipo"`
	Remote       bool       `json:"is_home_office"`
	Confidential bool       `json:"is_confidential"`
	PublishedAt  *time.Time `json:"data_publicacao"`
	SalaryMin    *float64   `json:"salario_minimo"`
	SalaryMax    *float64   `json:"salario_maximo"`
	Seniority    *string    `json:"nivel"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CompletenessScore counts how many of the high-value optional fields are
// filled in: salary, seniority, contract type, description. Listings with
// more information rank first when picking what to deliver.
func (l Listing) CompletenessScore() int {
	score := 0
	if l.SalaryMin != nil {
		score++
	}
	if l.Seniority != nil && *l.Seniority != "" {
		score++
	}
	if l.ContractType != nil && *l.ContractType != "" {
		score++
	}
	if l.Description != nil && *l.Description != "" {
		score++
	}
	return score
}
