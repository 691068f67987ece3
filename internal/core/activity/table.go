package activity

import (
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PageSize é o número de linhas por página da tabela.
const PageSize = 100

// Ellipsis marca, na janela de páginas, um salto de números omitidos.
const Ellipsis = 0

// SortOrder é o alternador de três estados da coluna de técnico.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Next avança o alternador: sem ordem -> asc -> desc -> sem ordem.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	}
	return SortNone
}

// ParseSortOrder aceita "asc"/"desc" em qualquer caixa; o resto é sem ordem.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return SortAsc
	case "desc":
		return SortDesc
	}
	return SortNone
}

// SortByTechnician ordena uma cópia dos registros pelo nome de exibição do
// técnico com comparação pt-BR. A ordenação é estável; SortNone devolve a
// ordem original.
func SortByTechnician(records []domain.Record, order SortOrder) []domain.Record {
	out := append([]domain.Record(nil), records...)
	if order == SortNone {
		return out
	}
	names := make(map[int]string, len(out))
	idx := make([]int, len(out))
	for i, rec := range out {
		idx[i] = i
		names[i] = TechnicianDisplayName(ValueOr(rec, FieldTechnician, ""))
	}
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(idx, func(a, b int) bool {
		c := col.CompareString(names[idx[a]], names[idx[b]])
		if order == SortDesc {
			return c > 0
		}
		return c < 0
	})
	sorted := make([]domain.Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// TotalPages é ceil(total/PageSize), com mínimo de uma página.
func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// ClampPage mantém a página entre 1 e o total de páginas.
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total); page > last {
		return last
	}
	return page
}

// Page devolve a fatia da página (1-indexada) já limitada ao intervalo válido.
func Page(records []domain.Record, page int) []domain.Record {
	page = ClampPage(page, len(records))
	start := (page - 1) * PageSize
	if start >= len(records) {
		return []domain.Record{}
	}
	end := start + PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// PageWindow lista os números de página a exibir. Até 5 páginas, todas;
// acima disso, a primeira, a última e até 3 em torno da atual, com Ellipsis
// nos saltos.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	if totalPages <= 5 {
		out := make([]int, totalPages)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	from, to := current-1, current+1
	if from < 2 {
		from = 2
	}
	if to > totalPages-1 {
		to = totalPages - 1
	}

	out := []int{1}
	if from > 2 {
		out = append(out, Ellipsis)
	}
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	if to < totalPages-1 {
		out = append(out, Ellipsis)
	}
	return append(out, totalPages)
}

// TableState guarda a página atual e volta para a primeira quando o
// conjunto filtrado ou a ordenação mudam.
type TableState struct {
	Signature string
	Order     SortOrder
	Page      int
}

// Update aplica uma requisição de página. Se filtros ou ordenação mudaram
// desde a última chamada, a página volta para 1 e a requisição é ignorada.
// page <= 0 mantém a atual.
func (s *TableState) Update(signature string, order SortOrder, page int) int {
	if s.Page >= 1 && (s.Signature != signature || s.Order != order) {
		s.Signature = signature
		s.Order = order
		s.Page = 1
		return s.Page
	}
	s.Signature = signature
	s.Order = order
	if page > 0 {
		s.Page = page
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s.Page
}

// TableRow é uma linha da tabela de análise detalhada.
type TableRow struct {
	Technician   string              `json:"recurso"`
	ActivityType string              `json:"tipoAtividade"`
	Code         string              `json:"codBaixa"`
	Status       domain.Status       `json:"status"`
	Interval     string              `json:"intervalo"`
	Editable     bool                `json:"statusEditavel"`
	Key          domain.CompositeKey `json:"chave"`
}

// TablePage é a página pronta para exibição.
type TablePage struct {
	Rows       []TableRow `json:"rows"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int        `json:"total"`
	Window     []int      `json:"window"`
	Order      SortOrder  `json:"order"`
}

// BuildTablePage ordena, pagina e monta as linhas.
func BuildTablePage(records []domain.Record, order SortOrder, page int) TablePage {
	sorted := SortByTechnician(records, order)
	page = ClampPage(page, len(sorted))
	slice := Page(sorted, page)
	rows := make([]TableRow, 0, len(slice))
	for _, rec := range slice {
		code := ValueOr(rec, FieldCode, "")
		rows = append(rows, TableRow{
			Technician:   ValueOr(rec, FieldTechnician, "N/A"),
			ActivityType: ValueOr(rec, FieldActivityType, "N/A"),
			Code:         orNA(code),
			Status:       Classify(rec),
			Interval:     ValueOr(rec, FieldInterval, "N/A"),
			Editable:     StatusEditable(code),
			Key:          KeyOf(rec),
		})
	}
	total := TotalPages(len(sorted))
	return TablePage{
		Rows:       rows,
		Page:       page,
		TotalPages: total,
		Total:      len(sorted),
		Window:     PageWindow(page, total),
		Order:      order,
	}
}

// KeyOf monta a chave composta de edição do registro.
func KeyOf(rec domain.Record) domain.CompositeKey {
	date := ValueOr(rec, FieldDate, "")
	if date == "" {
		if d, ok := EffectiveDate(rec); ok {
			date = d.Format("2006-01-02")
		}
	}
	return domain.CompositeKey{
		WorkOrder:      ValueOr(rec, FieldWorkOrder, ""),
		SecondaryOrder: ValueOr(rec, FieldSecondaryOrder, ""),
		Contract:       ValueOr(rec, FieldContract, ""),
		Date:           date,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
