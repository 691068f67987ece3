package activity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	serialPrefixes = []string{"1899-12-30", "1899-12-31"}
	isoTimeRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	hmsRegex       = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)
	hmRegex        = regexp.MustCompile(`^(\d+):(\d{2})$`)
	hoursTextRegex = regexp.MustCompile(`(?i)(\d+)\s*h(?:oras?)?\s*(?:(\d+)\s*m(?:in(?:utos?)?)?)?`)
	minutesRegex   = regexp.MustCompile(`(?i)^(\d+)\s*m(?:in(?:utos?)?)?$`)
	numberRegex    = regexp.MustCompile(`^(\d+(?:\.\d+)?)$`)
)

// Layouts aceitos para o artefato de data serial das planilhas
// ("1899-12-30T01:30:00.000Z"). Sem fuso, o horário é tomado como UTC.
var serialLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDurationToMinutes converte as várias representações de duração em
// minutos. Nunca falha: entrada irreconhecível vale 0.
func ParseDurationToMinutes(durationStr string) float64 {
	str := strings.TrimSpace(durationStr)
	if str == "" || str == "0" || str == "00:00" || str == "00:00:00" {
		return 0
	}

	// Planilhas guardam duração como fração de dia a partir de 1899-12-30;
	// ao serializar viram um timestamp absoluto. Só interessa a hora do dia.
	if hasSerialPrefix(str) || isoTimeRegex.MatchString(str) {
		if m, ok := parseSerialTimestamp(str); ok {
			return m
		}
	}

	if m := hmsRegex.FindStringSubmatch(str); m != nil {
		return float64(atoi(m[1])*60 + atoi(m[2]))
	}

	if m := hmRegex.FindStringSubmatch(str); m != nil {
		return float64(atoi(m[1])*60 + atoi(m[2]))
	}

	if m := hoursTextRegex.FindStringSubmatch(str); m != nil {
		return float64(atoi(m[1])*60 + atoi(m[2]))
	}

	if m := minutesRegex.FindStringSubmatch(str); m != nil {
		return float64(atoi(m[1]))
	}

	if m := numberRegex.FindStringSubmatch(str); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		return math.Round(f)
	}

	return 0
}

func hasSerialPrefix(str string) bool {
	for _, p := range serialPrefixes {
		if strings.Contains(str, p) {
			return true
		}
	}
	return false
}

func parseSerialTimestamp(str string) (float64, bool) {
	for _, layout := range serialLayouts {
		t, err := time.Parse(layout, str)
		if err != nil {
			continue
		}
		t = t.UTC()
		total := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
		if total > 0 {
			return total, true
		}
		return 0, false
	}
	return 0, false
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// FormatMinutesToTime formata minutos como "HH:MM". O total é arredondado
// antes da divisão, então 59,6 minutos vira "01:00" e nunca "00:60".
func FormatMinutesToTime(totalMinutes float64) string {
	if totalMinutes < 0 || math.IsNaN(totalMinutes) || math.IsInf(totalMinutes, 0) {
		totalMinutes = 0
	}
	total := int64(math.Round(totalMinutes))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
