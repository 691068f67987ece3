package activity

import "github.com/LuisEduardoPedra/painelAtividades/internal/domain"

const (
	topListSize     = 10
	podiumSize      = 5
	neighborhoodTop = 15
)

// Painel é a visão completa do painel para um conjunto de filtros.
type Painel struct {
	TotalRecords   int                             `json:"totalRecords"`
	FilteredCount  int                             `json:"filteredCount"`
	KPIs           domain.KPIs                     `json:"kpis"`
	Options        FilterOptions                   `json:"options"`
	TopTypes       []domain.TypeCount              `json:"topTypes"`
	TypesByProd    []domain.TypeCount              `json:"typesByProductivity"`
	AvgTimeByType  []domain.TypeDuration           `json:"avgTimeByType"`
	TopCodes       []domain.NamedCount             `json:"topCodes"`
	Distribution   []domain.TypeCount              `json:"distribution"`
	Overall        domain.TypeCount                `json:"overall"`
	SelectedType   string                          `json:"selectedType,omitempty"`
	Technicians    []domain.TechnicianProductivity `json:"technicians"`
	TopFive        []domain.TechnicianProductivity `json:"topFive"`
	BottomFive     []domain.TechnicianProductivity `json:"bottomFive"`
	DrillDownTechs int                             `json:"drillDownTechnicians"`
	TechChart      []domain.TechnicianProductivity `json:"technicianChart"`
	Neighborhoods  []domain.NamedCount             `json:"neighborhoods"`
	TimeSlots      []domain.NamedCount             `json:"timeSlots"`
	KeyActivities  []domain.KeyActivityCard        `json:"keyActivities"`
}

// BuildPainel aplica os filtros e calcula todas as agregações. selectedType
// é a fatia escolhida no gráfico de distribuição; afeta só a produtividade
// por técnico.
func BuildPainel(records []domain.Record, f domain.FilterState, selectedType string) Painel {
	filtered := ApplyFilters(records, f)
	drill := FilterByActivityType(filtered, selectedType)
	ranked := CalculateTechnicianProductivity(drill)
	top, bottom := TopBottom(ranked, podiumSize)
	dist := TypeDistribution(filtered)

	return Painel{
		TotalRecords:   len(records),
		FilteredCount:  len(filtered),
		KPIs:           CalculateKPIs(filtered),
		Options:        BuildFilterOptions(records),
		TopTypes:       ActivityTypesByTotal(filtered, topListSize),
		TypesByProd:    ActivityTypesByProductivity(filtered, topListSize),
		AvgTimeByType:  AvgTimeByType(filtered, topListSize),
		TopCodes:       DispositionCodeCounts(filtered, topListSize),
		Distribution:   dist,
		Overall:        OverallProductivity(dist),
		SelectedType:   selectedType,
		Technicians:    ranked,
		TopFive:        top,
		BottomFive:     bottom,
		DrillDownTechs: len(ranked),
		TechChart:      TechnicianTotals(filtered, topListSize),
		Neighborhoods:  NeighborhoodCounts(filtered, neighborhoodTop),
		TimeSlots:      TimeSlotCounts(filtered),
		KeyActivities:  KeyActivitySummary(filtered),
	}
}
