package activity

import (
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// Field é um campo lógico com todas as grafias de coluna aceitas, em ordem
// de preferência.
type Field struct {
	Name       string
	candidates []string
}

// Candidates devolve as grafias aceitas (inclui variantes sem acento e com
// acentuação corrompida).
func (f Field) Candidates() []string {
	return f.candidates
}

// newField monta as variantes de cada grafia: original, sem acento,
// mojibake e acento perdido. A ordem das grafias informadas é preservada.
func newField(names ...string) Field {
	seen := make(map[string]bool)
	var candidates []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}
	for _, n := range names {
		add(n)
		add(removeAccents(n))
		for _, v := range mojibake(n) {
			add(v)
		}
		for _, v := range lostAccents(n) {
			add(v)
		}
	}
	return Field{Name: names[0], candidates: candidates}
}

var (
	FieldTechnician   = newField("Recurso", "recurso", "RECURSO")
	FieldInterval     = newField("Intervalo de Tempo", "intervalo de tempo", "Intervalo")
	FieldActivityType = newField("Tipo de Atividade", "tipo de atividade", "Tipo Atividade")
	FieldCode         = newField("Cód de Baixa 1", "Código de Baixa 1", "cód de baixa 1")
	FieldDuration     = newField(
		"Duração", "duração", "DURAÇÃO",
		"Tempo", "tempo", "TEMPO",
		"Tempo de Atendimento", "tempo de atendimento",
		"Duration", "duration", "DURATION",
		"Tempo Atendimento", "tempo atendimento",
	)
	FieldNeighborhood   = newField("Bairro", "bairro", "BAIRRO")
	FieldCity           = newField("Cidade", "cidade", "Municipio/UF", "Município", "Municipio")
	FieldDate           = newField("Data", "Data Abertura", "Criado em")
	FieldWorkOrder      = newField("Número da WO", "WO")
	FieldSecondaryOrder = newField("Número da OS", "OS")
	FieldContract       = newField("Contrato", "contrato")
	FieldStatus         = newField("Status da Atividade")
	FieldLatitude       = newField("Latitude", "Lat")
	FieldLongitude      = newField("Longitude", "Lon", "Long")
	FieldTravelTime     = newField("Tempo de Deslocamento")
)

// Lookup devolve o primeiro valor não vazio (após trim) entre as grafias
// informadas. A busca é por nome exato.
func Lookup(rec domain.Record, candidates ...string) (string, bool) {
	for _, key := range candidates {
		if v, ok := rec[key]; ok {
			if t := strings.TrimSpace(v); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// Value resolve um campo lógico no registro.
func Value(rec domain.Record, f Field) (string, bool) {
	return Lookup(rec, f.candidates...)
}

// ValueOr é Value com valor padrão.
func ValueOr(rec domain.Record, f Field, def string) string {
	if v, ok := Value(rec, f); ok {
		return v
	}
	return def
}

var durationTokens = []string{"dura", "tempo", "duration"}

// FindDuration procura a duração primeiro pelos nomes conhecidos e, se não
// achar, varre as colunas do registro por qualquer chave que contenha
// "dura", "tempo" ou "duration". A varredura segue a ordem alfabética das
// chaves e ignora o intervalo e o tempo de deslocamento, que não são duração.
func FindDuration(rec domain.Record) (string, bool) {
	if v, ok := Value(rec, FieldDuration); ok {
		return v, true
	}

	skip := make(map[string]bool)
	for _, f := range []Field{FieldInterval, FieldTravelTime} {
		for _, c := range f.candidates {
			skip[c] = true
		}
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		lower := foldKey(key)
		for _, token := range durationTokens {
			if strings.Contains(lower, token) {
				if v := strings.TrimSpace(rec[key]); v != "" {
					return v, true
				}
				break
			}
		}
	}
	return "", false
}
