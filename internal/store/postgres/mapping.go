package postgres

import (
	"math"
	"strconv"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// ToAtividade converte um registro da planilha para o formato do banco.
// Campos vazios ou não numéricos ficam nulos.
func ToAtividade(rec domain.Record) domain.Atividade {
	a := domain.Atividade{
		NumeroOS:        activity.ValueOr(rec, activity.FieldWorkOrder, ""),
		Contrato:        activity.ValueOr(rec, activity.FieldContract, ""),
		Recurso:         activity.ValueOr(rec, activity.FieldTechnician, ""),
		StatusAtividade: activity.ValueOr(rec, activity.FieldStatus, ""),
		TipoAtividade:   activity.ValueOr(rec, activity.FieldActivityType, ""),
		CodBaixa1:       activity.ValueOr(rec, activity.FieldCode, ""),
		IntervaloTempo:  activity.ValueOr(rec, activity.FieldInterval, ""),
		Cidade:          activity.ValueOr(rec, activity.FieldCity, ""),
		Bairro:          activity.ValueOr(rec, activity.FieldNeighborhood, ""),
	}

	if d, ok := activity.EffectiveDate(rec); ok {
		a.DataAtividade = d.Format("2006-01-02")
	}
	if v, ok := activity.FindDuration(rec); ok {
		a.DuracaoMinutos = positiveMinutes(v)
	}
	if v, ok := activity.Value(rec, activity.FieldTravelTime); ok {
		a.TempoDeDeslocamento = positiveMinutes(v)
	}
	a.Latitude = optionalFloat(activity.ValueOr(rec, activity.FieldLatitude, ""))
	a.Longitude = optionalFloat(activity.ValueOr(rec, activity.FieldLongitude, ""))
	return a
}

// ToRecord faz o caminho inverso, com os nomes de coluna da planilha.
func ToRecord(a domain.Atividade) domain.Record {
	return domain.Record{
		"Recurso":               a.Recurso,
		"Número da WO":          a.NumeroOS,
		"Contrato":              a.Contrato,
		"Data":                  a.DataAtividade,
		"Status da Atividade":   a.StatusAtividade,
		"Tipo de Atividade":     a.TipoAtividade,
		"Cód de Baixa 1":        a.CodBaixa1,
		"Intervalo de Tempo":    a.IntervaloTempo,
		"Duração":               intString(a.DuracaoMinutos),
		"Latitude":              floatString(a.Latitude),
		"Longitude":             floatString(a.Longitude),
		"Cidade":                a.Cidade,
		"Bairro":                a.Bairro,
		"Tempo de Deslocamento": intString(a.TempoDeDeslocamento),
	}
}

func positiveMinutes(v string) *int {
	m := int(math.Round(activity.ParseDurationToMinutes(v)))
	if m <= 0 {
		return nil
	}
	return &m
}

func optionalFloat(v string) *float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f == 0 {
		return nil
	}
	return &f
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
