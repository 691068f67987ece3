package activity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// removeAccents tira os diacríticos (NFD + remoção das marcas combinantes).
func removeAccents(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		return str
	}
	return result
}

// foldKey normaliza um texto para comparação: sem acento, minúsculo,
// espaços colapsados.
func foldKey(str string) string {
	result := strings.ToLower(removeAccents(str))
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// mojibake reproduz o que acontece quando um texto UTF-8 é lido como
// Windows-1252 ou ISO-8859-1 ("Cód" vira "CÃ³d").
func mojibake(str string) []string {
	var out []string
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().String(str)
		if err == nil && decoded != str {
			out = append(out, decoded)
		}
	}
	return out
}

// lostAccents troca cada rune não ASCII por '?' e por U+FFFD, as duas formas
// em que exportações com codificação perdida costumam chegar.
func lostAccents(str string) []string {
	var q, r strings.Builder
	changed := false
	for _, c := range str {
		if c > unicode.MaxASCII {
			changed = true
			q.WriteRune('?')
			r.WriteRune(unicode.ReplacementChar)
			continue
		}
		q.WriteRune(c)
		r.WriteRune(c)
	}
	if !changed {
		return nil
	}
	return []string{q.String(), r.String()}
}
