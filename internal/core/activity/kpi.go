package activity

import "github.com/LuisEduardoPedra/painelAtividades/internal/domain"

// CalculateKPIs calcula os indicadores sobre a base sem os tipos excluídos.
// A duração média considera apenas os registros com duração maior que zero.
func CalculateKPIs(records []domain.Record) domain.KPIs {
	base := ExcludeServiceTypes(records)

	var k domain.KPIs
	k.Total = len(base)
	k.Technicians = UniqueTechnicians(base)
	for _, rec := range base {
		switch Classify(rec) {
		case domain.StatusProdutiva:
			k.Productive++
		case domain.StatusImprodutiva:
			k.Unproductive++
		}
		raw, _ := FindDuration(rec)
		if m := ParseDurationToMinutes(raw); m > 0 {
			k.TotalMinutes += m
			k.ItemsWithDuration++
		}
	}

	k.AvgDuration = "00:00"
	if k.ItemsWithDuration > 0 {
		k.AvgDuration = FormatMinutesToTime(k.TotalMinutes / float64(k.ItemsWithDuration))
	}
	return k
}
