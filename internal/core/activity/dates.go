package activity

import (
	"regexp"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

var (
	brDateRegex  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	isoDateRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// ParseBRDate interpreta "dd/mm/aaaa" (ou "dd/mm/aa", assumido 20aa) e, em
// seguida, "aaaa-mm-dd". Devolve false quando nenhum casa ou a data não existe
// (31/02, mês 13...). As datas são sempre meia-noite UTC.
func ParseBRDate(dateStr string) (time.Time, bool) {
	str := strings.TrimSpace(dateStr)
	if str == "" {
		return time.Time{}, false
	}
	if m := brDateRegex.FindStringSubmatch(str); m != nil {
		return buildDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), true)
	}
	if m := isoDateRegex.FindStringSubmatch(str); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), false)
	}
	return time.Time{}, false
}

// ExtractDateFromInterval lê só a primeira data de um intervalo no formato
// "08/01/2025 07:30 - 08/01/2025 08:30".
func ExtractDateFromInterval(interval string) (time.Time, bool) {
	m := brDateRegex.FindStringSubmatch(strings.TrimSpace(interval))
	if m == nil {
		return time.Time{}, false
	}
	return buildDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), true)
}

// EffectiveDate tenta o intervalo primeiro e depois a coluna de data.
func EffectiveDate(rec domain.Record) (time.Time, bool) {
	if interval, ok := Value(rec, FieldInterval); ok {
		if d, ok := ExtractDateFromInterval(interval); ok {
			return d, true
		}
	}
	if raw, ok := Value(rec, FieldDate); ok {
		return ParseBRDate(raw)
	}
	return time.Time{}, false
}

func buildDate(year, month, day int, shortYear bool) (time.Time, bool) {
	if shortYear && year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normaliza 31/02 para março; isso é data inválida
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
