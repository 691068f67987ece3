package activity

import (
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// AtividadesChave são os cartões fixos do resumo de atividades.
var AtividadesChave = []string{
	"MUDANCA DE PACOTE",
	"INSTALACAO",
	"INST GPON - INST CABO",
}

// KeyActivitySummary conta, para cada atividade-chave, os registros com tipo
// exatamente igual e os que contêm o nome (sem caixa e sem acento). Um
// registro conta só para a primeira atividade-chave que contém.
//
// Cartões sem nenhum registro são preenchidos com os tipos restantes de
// maior produtividade (empate: maior total, depois nome), marcados como
// substituídos. Ficam de fora os tipos ignorados na distribuição, os que
// contêm alguma atividade-chave e os já exibidos.
func KeyActivitySummary(records []domain.Record) []domain.KeyActivityCard {
	targets := make([]string, len(AtividadesChave))
	for i, t := range AtividadesChave {
		targets[i] = foldUpper(t)
	}

	cards := make([]domain.KeyActivityCard, len(AtividadesChave))
	for i, name := range AtividadesChave {
		cards[i] = domain.KeyActivityCard{Slot: name, Name: name}
	}

	for _, rec := range records {
		rowType := foldUpper(ValueOr(rec, FieldActivityType, ""))
		if rowType == "" {
			continue
		}
		productive := IsProductive(rec)
		for i, target := range targets {
			if !strings.Contains(rowType, target) {
				continue
			}
			cards[i].Contains.Total++
			if productive {
				cards[i].Contains.Productive++
			}
			if rowType == target {
				cards[i].Exact.Total++
				if productive {
					cards[i].Exact.Productive++
				}
			}
			break
		}
	}

	used := make(map[string]bool)
	for i := range cards {
		if cards[i].Contains.Total > 0 {
			used[foldUpper(cards[i].Name)] = true
		}
	}

	var candidates []domain.TypeCount
	for _, tc := range typeCounts(activityGroup(records, true)) {
		if containsAnyTarget(foldUpper(tc.Type), targets) {
			continue
		}
		candidates = append(candidates, tc)
	}
	sortByProductivity(candidates)

	next := 0
	for i := range cards {
		if cards[i].Contains.Total > 0 {
			cards[i].Productivity = Percent(cards[i].Contains.Productive, cards[i].Contains.Total)
			continue
		}
		for next < len(candidates) && used[foldUpper(candidates[next].Type)] {
			next++
		}
		if next >= len(candidates) {
			continue
		}
		sub := candidates[next]
		next++
		used[foldUpper(sub.Type)] = true
		counts := domain.ActivityCount{Total: sub.Total, Productive: sub.Productive}
		cards[i] = domain.KeyActivityCard{
			Slot:         AtividadesChave[i],
			Name:         sub.Type,
			Exact:        counts,
			Contains:     counts,
			Productivity: sub.Productivity,
			Substituted:  true,
		}
	}
	return cards
}

func foldUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(removeAccents(s)))
}

func containsAnyTarget(s string, targets []string) bool {
	for _, t := range targets {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

