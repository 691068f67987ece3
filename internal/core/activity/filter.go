package activity

import (
	"sort"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TiposExcluidos são os tipos de atividade que não contam como atendimento.
// A comparação ignora caixa, acento e espaços nas pontas.
var TiposExcluidos = []string{
	"Reuniao",
	"Na base",
	"Refeicao",
	"Apoio a outro tecnico",
	"Manutencao de veiculo",
	"Ausência por motivo medico",
}

var excludedSet = func() map[string]bool {
	set := make(map[string]bool, len(TiposExcluidos))
	for _, t := range TiposExcluidos {
		set[foldKey(t)] = true
	}
	return set
}()

// IsExcludedType indica se o tipo de atividade está na lista de exclusão.
func IsExcludedType(activityType string) bool {
	return excludedSet[foldKey(activityType)]
}

// ExcludeServiceTypes remove os registros cujo tipo está na lista de
// exclusão. É a base de KPIs e das quebras por técnico e bairro.
func ExcludeServiceTypes(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if !IsExcludedType(ValueOr(rec, FieldActivityType, "")) {
			out = append(out, rec)
		}
	}
	return out
}

// ApplyFilters executa o pipeline de filtros em ordem fixa: exclusão de
// tipos, técnico, tipo, cidade, produtividade, texto livre e período. Cada
// etapa só estreita a coleção e a ordem original é preservada.
func ApplyFilters(records []domain.Record, f domain.FilterState) []domain.Record {
	result := ExcludeServiceTypes(records)
	if f.IsEmpty() {
		return result
	}

	if len(f.Technicians) > 0 {
		set := toSet(f.Technicians)
		result = keep(result, func(rec domain.Record) bool {
			return set[ValueOr(rec, FieldTechnician, "")]
		})
	}

	if len(f.ActivityTypes) > 0 {
		set := toSet(f.ActivityTypes)
		result = keep(result, func(rec domain.Record) bool {
			return set[ValueOr(rec, FieldActivityType, "")]
		})
	}

	if len(f.Cities) > 0 {
		set := toSet(f.Cities)
		result = keep(result, func(rec domain.Record) bool {
			return set[ValueOr(rec, FieldCity, "")]
		})
	}

	switch f.Productivity {
	case domain.ProdutividadeProdutivas:
		result = keep(result, func(rec domain.Record) bool {
			return Classify(rec) == domain.StatusProdutiva
		})
	case domain.ProdutividadeImprodutivas:
		result = keep(result, func(rec domain.Record) bool {
			return Classify(rec) == domain.StatusImprodutiva
		})
	}

	if f.SearchText != "" {
		query := strings.ToLower(f.SearchText)
		result = keep(result, func(rec domain.Record) bool {
			for _, v := range rec {
				if strings.Contains(strings.ToLower(v), query) {
					return true
				}
			}
			return false
		})
	}

	if f.StartDate != "" || f.EndDate != "" {
		start, hasStart := ParseBRDate(f.StartDate)
		end, hasEnd := ParseBRDate(f.EndDate)
		if hasEnd {
			// limite final inclui o dia inteiro
			end = end.Add(24 * time.Hour)
		}
		result = keep(result, func(rec domain.Record) bool {
			d, ok := EffectiveDate(rec)
			if !ok {
				// sem data o registro nunca é excluído
				return true
			}
			if hasStart && d.Before(start) {
				return false
			}
			if hasEnd && !d.Before(end) {
				return false
			}
			return true
		})
	}

	return result
}

// FilterByActivityType é o recorte de uma fatia do gráfico de distribuição
// por tipo. Tipo vazio devolve a coleção sem alteração.
func FilterByActivityType(records []domain.Record, activityType string) []domain.Record {
	if activityType == "" {
		return records
	}
	return keep(records, func(rec domain.Record) bool {
		return ValueOr(rec, FieldActivityType, "") == activityType
	})
}

// FilterOptions são as opções dos seletores de filtro.
type FilterOptions struct {
	Technicians   []string `json:"technicians"`
	ActivityTypes []string `json:"activityTypes"`
	Cities        []string `json:"cities"`
}

// BuildFilterOptions lista os valores distintos sobre a base já sem os tipos
// excluídos, em ordem alfabética pt-BR.
func BuildFilterOptions(records []domain.Record) FilterOptions {
	base := ExcludeServiceTypes(records)
	return FilterOptions{
		Technicians:   distinct(base, FieldTechnician),
		ActivityTypes: distinct(base, FieldActivityType),
		Cities:        distinct(base, FieldCity),
	}
}

func distinct(records []domain.Record, f Field) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, rec := range records {
		if v, ok := Value(rec, f); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	col := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i], out[j]) < 0
	})
	return out
}

func keep(records []domain.Record, pred func(domain.Record) bool) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
