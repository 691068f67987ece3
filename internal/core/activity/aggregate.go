package activity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// NaoInformado é o rótulo para valores ausentes.
const NaoInformado = "Não Informado"

// IgnoradosDistribuicao são ignorados (por substring, sem caixa) apenas nas
// visualizações de distribuição por tipo.
var IgnoradosDistribuicao = []string{"na base", "refeicao", "refeição", "intervalo", "não informado"}

// Percent calcula parte/total*100, com total zero valendo 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// TechnicianDisplayName reduz o nome ao primeiro e último token.
func TechnicianDisplayName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return NaoInformado
	case 1:
		return parts[0]
	}
	return parts[0] + " " + parts[len(parts)-1]
}

// group é um acumulador com ordem de inserção estável.
type group struct {
	order  []string
	counts map[string]*domain.ActivityCount
}

func newGroup() *group {
	return &group{counts: make(map[string]*domain.ActivityCount)}
}

func (g *group) add(key string, productive bool) {
	c, ok := g.counts[key]
	if !ok {
		c = &domain.ActivityCount{}
		g.counts[key] = c
		g.order = append(g.order, key)
	}
	c.Total++
	if productive {
		c.Productive++
	}
}

// CalculateTechnicianProductivity agrupa pelo nome de exibição do técnico e
// ordena por produtividade decrescente. Empates: mais atendimentos primeiro,
// depois nome. "Não Informado" e grupos vazios ficam de fora.
func CalculateTechnicianProductivity(records []domain.Record) []domain.TechnicianProductivity {
	g := newGroup()
	for _, rec := range records {
		g.add(TechnicianDisplayName(ValueOr(rec, FieldTechnician, "")), IsProductive(rec))
	}

	out := make([]domain.TechnicianProductivity, 0, len(g.order))
	for _, name := range g.order {
		c := g.counts[name]
		if name == NaoInformado || c.Total == 0 {
			continue
		}
		out = append(out, domain.TechnicianProductivity{
			Name:            name,
			Count:           c.Total,
			ProductiveCount: c.Productive,
			Productivity:    Percent(c.Productive, c.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Productivity != out[j].Productivity {
			return out[i].Productivity > out[j].Productivity
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopBottom devolve os n melhores e os n piores (o pior primeiro).
func TopBottom(ranked []domain.TechnicianProductivity, n int) (top, bottom []domain.TechnicianProductivity) {
	top = ranked
	if len(top) > n {
		top = top[:n]
	}
	start := len(ranked) - n
	if start < 0 {
		start = 0
	}
	tail := ranked[start:]
	bottom = make([]domain.TechnicianProductivity, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		bottom = append(bottom, tail[i])
	}
	return top, bottom
}

// TechnicianTotals é o gráfico de atendimentos por técnico: ordenado por
// total decrescente e limitado a limit entradas (0 = sem limite).
func TechnicianTotals(records []domain.Record, limit int) []domain.TechnicianProductivity {
	ranked := CalculateTechnicianProductivity(records)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	return limitSlice(ranked, limit)
}

// CalculateActivityCounts agrupa pelo tipo exato de atividade.
func CalculateActivityCounts(records []domain.Record) map[string]domain.ActivityCount {
	g := activityGroup(records, false)
	out := make(map[string]domain.ActivityCount, len(g.order))
	for _, k := range g.order {
		out[k] = *g.counts[k]
	}
	return out
}

func activityGroup(records []domain.Record, applyIgnore bool) *group {
	g := newGroup()
	for _, rec := range records {
		t := ValueOr(rec, FieldActivityType, NaoInformado)
		if applyIgnore && isIgnoredForDistribution(t) {
			continue
		}
		g.add(t, IsProductive(rec))
	}
	return g
}

func isIgnoredForDistribution(activityType string) bool {
	lower := strings.ToLower(strings.TrimSpace(activityType))
	for _, ignored := range IgnoradosDistribuicao {
		if strings.Contains(lower, ignored) {
			return true
		}
	}
	return false
}

func typeCounts(g *group) []domain.TypeCount {
	out := make([]domain.TypeCount, 0, len(g.order))
	for _, k := range g.order {
		c := g.counts[k]
		out = append(out, domain.TypeCount{
			Type:         k,
			Total:        c.Total,
			Productive:   c.Productive,
			Productivity: Percent(c.Productive, c.Total),
		})
	}
	return out
}

// ActivityTypesByTotal é a lista "Atividades por Tipo" (sem lista de ignorados).
func ActivityTypesByTotal(records []domain.Record, limit int) []domain.TypeCount {
	out := typeCounts(activityGroup(records, false))
	sortByTotal(out)
	return limitSlice(out, limit)
}

// ActivityTypesByProductivity é a lista "Produtividade por Tipo".
func ActivityTypesByProductivity(records []domain.Record, limit int) []domain.TypeCount {
	out := typeCounts(activityGroup(records, false))
	sortByProductivity(out)
	return limitSlice(out, limit)
}

// TypeDistribution alimenta o gráfico de pizza: aplica a lista de ignorados
// e ordena por total.
func TypeDistribution(records []domain.Record) []domain.TypeCount {
	out := typeCounts(activityGroup(records, true))
	sortByTotal(out)
	return out
}

// OverallProductivity soma uma distribuição por tipo.
func OverallProductivity(dist []domain.TypeCount) domain.TypeCount {
	var total domain.TypeCount
	for _, d := range dist {
		total.Total += d.Total
		total.Productive += d.Productive
	}
	total.Productivity = Percent(total.Productive, total.Total)
	return total
}

func sortByTotal(xs []domain.TypeCount) {
	sort.SliceStable(xs, func(i, j int) bool {
		if xs[i].Total != xs[j].Total {
			return xs[i].Total > xs[j].Total
		}
		return xs[i].Type < xs[j].Type
	})
}

func sortByProductivity(xs []domain.TypeCount) {
	sort.SliceStable(xs, func(i, j int) bool {
		if xs[i].Productivity != xs[j].Productivity {
			return xs[i].Productivity > xs[j].Productivity
		}
		if xs[i].Total != xs[j].Total {
			return xs[i].Total > xs[j].Total
		}
		return xs[i].Type < xs[j].Type
	})
}

// AvgTimeByType é o tempo médio por tipo, na ordem em que os tipos aparecem.
func AvgTimeByType(records []domain.Record, limit int) []domain.TypeDuration {
	type acc struct {
		minutes float64
		count   int
	}
	var order []string
	data := make(map[string]*acc)
	for _, rec := range records {
		t := ValueOr(rec, FieldActivityType, NaoInformado)
		a, ok := data[t]
		if !ok {
			a = &acc{}
			data[t] = a
			order = append(order, t)
		}
		raw, _ := FindDuration(rec)
		a.minutes += ParseDurationToMinutes(raw)
		a.count++
	}
	out := make([]domain.TypeDuration, 0, len(order))
	for _, t := range order {
		a := data[t]
		avg := "00:00"
		if a.count > 0 {
			avg = FormatMinutesToTime(a.minutes / float64(a.count))
		}
		out = append(out, domain.TypeDuration{Type: t, AvgTime: avg})
	}
	return limitSlice(out, limit)
}

// NormalizeNeighborhood coloca em maiúsculas e junta os apelidos conhecidos.
func NormalizeNeighborhood(name string) string {
	n := strings.ToUpper(strings.TrimSpace(whitespaceRegex.ReplaceAllString(name, " ")))
	if alias, ok := neighborhoodAliases[n]; ok {
		return alias
	}
	return n
}

var neighborhoodAliases = map[string]string{
	"NV PARNAMIRIM": "NOVA PARNAMIRIM",
}

// NeighborhoodCounts conta atendimentos por bairro normalizado; bairros
// vazios ficam de fora.
func NeighborhoodCounts(records []domain.Record, limit int) []domain.NamedCount {
	counts := make(map[string]int)
	for _, rec := range records {
		n := NormalizeNeighborhood(ValueOr(rec, FieldNeighborhood, ""))
		if n == "" || n == strings.ToUpper(NaoInformado) {
			continue
		}
		counts[n]++
	}
	return limitSlice(sortedCounts(counts), limit)
}

// DispositionCodeCounts conta pelo código de baixa bruto.
func DispositionCodeCounts(records []domain.Record, limit int) []domain.NamedCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[ValueOr(rec, FieldCode, NaoInformado)]++
	}
	return limitSlice(sortedCounts(counts), limit)
}

func sortedCounts(counts map[string]int) []domain.NamedCount {
	out := make([]domain.NamedCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, domain.NamedCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TimeSlot é uma faixa fixa de horário.
type TimeSlot struct {
	Label     string
	Start     string
	StartHour int
	EndHour   int
}

// TimeSlots são as seis faixas entre 08:00 e 18:00.
var TimeSlots = []TimeSlot{
	{Label: "08:00 - 10:00", Start: "08:00", StartHour: 8, EndHour: 10},
	{Label: "10:00 - 12:00", Start: "10:00", StartHour: 10, EndHour: 12},
	{Label: "12:00 - 14:00", Start: "12:00", StartHour: 12, EndHour: 14},
	{Label: "14:00 - 16:00", Start: "14:00", StartHour: 14, EndHour: 16},
	{Label: "16:00 - 17:00", Start: "16:00", StartHour: 16, EndHour: 17},
	{Label: "17:00 - 18:00", Start: "17:00", StartHour: 17, EndHour: 18},
}

var hourRegex = regexp.MustCompile(`(\d{2}):(\d{2})`)

// TimeSlotOf devolve a faixa do intervalo: primeiro pelo horário de início
// da faixa contido no texto, depois pela hora do primeiro "HH:MM".
func TimeSlotOf(interval string) string {
	if interval == "" {
		return NaoInformado
	}
	for _, slot := range TimeSlots {
		if strings.Contains(interval, slot.Start) {
			return slot.Label
		}
	}
	m := hourRegex.FindStringSubmatch(interval)
	if m == nil {
		return NaoInformado
	}
	hour := atoi(m[1])
	for _, slot := range TimeSlots {
		if hour >= slot.StartHour && hour < slot.EndHour {
			return slot.Label
		}
	}
	return NaoInformado
}

// TimeSlotCounts distribui os registros pelas faixas. A saída segue a ordem
// fixa das faixas, com "Não Informado" por último, e omite faixas zeradas.
func TimeSlotCounts(records []domain.Record) []domain.NamedCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[TimeSlotOf(ValueOr(rec, FieldInterval, ""))]++
	}
	out := make([]domain.NamedCount, 0, len(TimeSlots)+1)
	for _, slot := range TimeSlots {
		if c := counts[slot.Label]; c > 0 {
			out = append(out, domain.NamedCount{Name: slot.Label, Count: c})
		}
	}
	if c := counts[NaoInformado]; c > 0 {
		out = append(out, domain.NamedCount{Name: NaoInformado, Count: c})
	}
	return out
}

// UniqueTechnicians conta nomes brutos distintos (não vazios).
func UniqueTechnicians(records []domain.Record) int {
	seen := make(map[string]bool)
	for _, rec := range records {
		if v, ok := Value(rec, FieldTechnician); ok {
			seen[v] = true
		}
	}
	return len(seen)
}

func limitSlice[T any](xs []T, limit int) []T {
	if limit > 0 && len(xs) > limit {
		return xs[:limit]
	}
	return xs
}
