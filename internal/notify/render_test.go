package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"empregozap-engine/internal/domain"
)

func strp(s string) *string     { return &s }
func floatp(f float64) *float64 { return &f }

func TestRenderConfirmation(t *testing.T) {
	msg := RenderConfirmation(domain.Search{
		Role: "Engenheiro", City: "São Paulo", State: "SP",
	})
	assert.Contains(t, msg, "Nova busca configurada")
	assert.Contains(t, msg, "Cargo: Engenheiro")
	assert.Contains(t, msg, "Cidade: São Paulo")
	assert.Contains(t, msg, "Estado: SP")
}

func TestRenderBatch(t *testing.T) {
	msg := RenderBatch([]domain.Listing{
		{
			Role:         "Engenheiro de Dados",
			Company:      strp("Acme"),
			City:         strp("São Paulo"),
			State:        strp("SP"),
			URL:          "https://example.com/1",
			SalaryMin:    floatp(8000),
			SalaryMax:    floatp(12000),
			ContractType: strp("CLT"),
			Seniority:    strp("Pleno"),
			Remote:       true,
		},
		{
			Role:         "Vendedor",
			URL:          "https://example.com/2",
			Confidential: true,
		},
	})

	assert.Contains(t, msg, "Novas vagas encontradas")
	assert.Contains(t, msg, "*1. Engenheiro de Dados*")
	assert.Contains(t, msg, "Empresa: Acme")
	assert.Contains(t, msg, "Local: São Paulo/SP (Home Office)")
	assert.Contains(t, msg, "Salário: R$ 8.000,00 a R$ 12.000,00")
	assert.Contains(t, msg, "Tipo: CLT")
	assert.Contains(t, msg, "Nível: Pleno")

	assert.Contains(t, msg, "*2. Vendedor*")
	assert.Contains(t, msg, "Empresa: Confidencial")
	// No salary line for the second listing.
	assert.Equal(t, 1, strings.Count(msg, "Salário"))
}

func TestRenderBatch_EqualSalaryBounds(t *testing.T) {
	msg := RenderBatch([]domain.Listing{{
		Role:      "Auxiliar",
		URL:       "https://example.com/3",
		SalaryMin: floatp(2500),
		SalaryMax: floatp(2500),
	}})
	assert.Contains(t, msg, "Salário: R$ 2.500,00\n")
	assert.NotContains(t, msg, " a R$ ")
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "950,00", formatBRL(950))
	assert.Equal(t, "1.234,50", formatBRL(1234.5))
	assert.Equal(t, "1.234.567,89", formatBRL(1234567.89))
}

func TestChunk(t *testing.T) {
	listings := make([]domain.Listing, 12)
	batches := chunk(listings, 5)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 5)
	assert.Len(t, batches[2], 2)

	assert.Nil(t, chunk(nil, 5))
}
