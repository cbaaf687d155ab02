package notify

import (
	"fmt"
	"strings"

	"empregozap-engine/internal/domain"
)

// RenderConfirmation is the message sent right after a search is registered.
func RenderConfirmation(s domain.Search) string {
	var b strings.Builder
	b.WriteString("🔍 *Nova busca configurada!*\n\n")
	b.WriteString("Estou buscando vagas com os seguintes critérios:\n")
	fmt.Fprintf(&b, "📋 Cargo: %s\n", s.Role)
	fmt.Fprintf(&b, "📍 Cidade: %s\n", s.City)
	fmt.Fprintf(&b, "🏠 Estado: %s\n\n", s.State)
	b.WriteString("Enviarei as vagas encontradas a cada 3 horas, entre 9h e 20h. Fique atento! 😊")
	return b.String()
}

// RenderBatch formats one WhatsApp message for a batch of listings.
// Optional fields (salary, contract type, seniority) only render when known.
func RenderBatch(listings []domain.Listing) string {
	var b strings.Builder
	b.WriteString("🎯 *Novas vagas encontradas!*\n\n")

	for i, l := range listings {
		fmt.Fprintf(&b, "*%d. %s*\n", i+1, l.Role)
		fmt.Fprintf(&b, "🏢 Empresa: %s\n", companyLine(l))
		fmt.Fprintf(&b, "📍 Local: %s%s\n", locationLine(l), remoteSuffix(l))

		if l.SalaryMin != nil {
			fmt.Fprintf(&b, "💰 Salário: R$ %s", formatBRL(*l.SalaryMin))
			if l.SalaryMax != nil && *l.SalaryMax != *l.SalaryMin {
				fmt.Fprintf(&b, " a R$ %s", formatBRL(*l.SalaryMax))
			}
			b.WriteString("\n")
		}
		if l.ContractType != nil && *l.ContractType != "" {
			fmt.Fprintf(&b, "📋 Tipo: %s\n", *l.ContractType)
		}
		if l.Seniority != nil && *l.Seniority != "" {
			fmt.Fprintf(&b, "📊 Nível: %s\n", *l.Seniority)
		}
		fmt.Fprintf(&b, "🔗 Link: %s\n\n", l.URL)
	}
	return b.String()
}

func companyLine(l domain.Listing) string {
	if l.Confidential || l.Company == nil || *l.Company == "" {
		return "Confidencial"
	}
	return *l.Company
}

func locationLine(l domain.Listing) string {
	city, state := "", ""
	if l.City != nil {
		city = *l.City
	}
	if l.State != nil {
		state = *l.State
	}
	switch {
	case city != "" && state != "":
		return city + "/" + state
	case city != "":
		return city
	case state != "":
		return state
	default:
		return "Não informado"
	}
}

func remoteSuffix(l domain.Listing) string {
	if l.Remote {
		return " (Home Office)"
	}
	return ""
}

// formatBRL writes 1234.5 as "1.234,50", the grouping users expect in pt-BR.
func formatBRL(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, decPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	return strings.Join(groups, ".") + "," + decPart
}
