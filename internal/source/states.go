package source

import "strings"

// stateAbbr maps Brazilian state names (and their own abbreviations) to the
// two-letter sigla the listings table stores.
var stateAbbr = map[string]string{
	"acre": "AC", "ac": "AC",
	"alagoas": "AL", "al": "AL",
	"amapa": "AP", "ap": "AP",
	"amazonas": "AM", "am": "AM",
	"bahia": "BA", "ba": "BA",
	"ceara": "CE", "ce": "CE",
	"distritofederal": "DF", "df": "DF",
	"espiritosanto": "ES", "es": "ES",
	"goias": "GO", "go": "GO",
	"maranhao": "MA", "ma": "MA",
	"matogrosso": "MT", "mt": "MT",
	"matogrossodosul": "MS", "ms": "MS",
	"minasgerais": "MG", "mg": "MG",
	"para": "PA", "pa": "PA",
	"paraiba": "PB", "pb": "PB",
	"parana": "PR", "pr": "PR",
	"pernambuco": "PE", "pe": "PE",
	"piaui": "PI", "pi": "PI",
	"riodejaneiro": "RJ", "rj": "RJ",
	"riograndedonorte": "RN", "rn": "RN",
	"riograndedosul": "RS", "rs": "RS",
	"rondonia": "RO", "ro": "RO",
	"roraima": "RR", "rr": "RR",
	"santacatarina": "SC", "sc": "SC",
	"saopaulo": "SP", "sp": "SP",
	"sergipe": "SE", "se": "SE",
	"tocantins": "TO", "to": "TO",
}

var accentFold = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// FoldForMatch lowercases and strips accents/spaces so "São Paulo" compares
// equal to "sao paulo".
func FoldForMatch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = accentFold.Replace(s)
	return strings.ReplaceAll(s, " ", "")
}

// StateAbbreviation converts a state name or sigla to the canonical
// two-letter form, or "" when unrecognized.
func StateAbbreviation(s string) string {
	return stateAbbr[FoldForMatch(s)]
}
