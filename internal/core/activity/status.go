package activity

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// LimiarProdutivo é a regra de negócio: código de baixa com prefixo numérico
// maior ou igual a este valor é produtivo.
const LimiarProdutivo = 409

var numericPrefixRegex = regexp.MustCompile(`^\d+`)

// NumericPrefix extrai a sequência inicial de dígitos do código
// ("410 - Concluído" -> 410).
func NumericPrefix(code string) (int64, bool) {
	digits := numericPrefixRegex.FindString(code)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// só pode ser estouro: número enorme, com certeza acima do limiar
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return int64(^uint64(0) >> 1), true
		}
		return 0, false
	}
	return n, true
}

// StatusFromCode aplica a regra do limiar. O segundo retorno indica se o
// código tinha prefixo numérico (isto é, se o status foi derivado dele).
func StatusFromCode(code string) (domain.Status, bool) {
	n, ok := NumericPrefix(code)
	if !ok {
		return domain.StatusPendente, false
	}
	if n >= LimiarProdutivo {
		return domain.StatusProdutiva, true
	}
	return domain.StatusImprodutiva, true
}

// Classify deriva o status de um registro. O código de baixa numérico sempre
// decide; sem ele, vale o status gravado por uma edição anterior (quando é um
// dos três rótulos); caso contrário, Pendente.
func Classify(rec domain.Record) domain.Status {
	code, _ := Value(rec, FieldCode)
	if s, derived := StatusFromCode(code); derived {
		return s
	}
	if stored, ok := Value(rec, FieldStatus); ok {
		if s, ok := domain.ParseStatus(stored); ok {
			return s
		}
	}
	return domain.StatusPendente
}

// ClassifyDraft é a derivação usada pelo fluxo de edição. O código do
// rascunho é recalculado primeiro; o status escolhido manualmente só vale
// quando esse código não tem prefixo numérico. Sem rascunho, equivale a
// Classify.
func ClassifyDraft(rec domain.Record, draft *domain.Draft) domain.Status {
	if draft == nil {
		return Classify(rec)
	}
	if s, derived := StatusFromCode(draft.Code); derived {
		return s
	}
	if s, ok := domain.ParseStatus(string(draft.Status)); ok {
		return s
	}
	return domain.StatusPendente
}

// StatusEditable indica se a seleção manual de status deve ficar habilitada
// para o código informado.
func StatusEditable(code string) bool {
	_, derived := StatusFromCode(code)
	return !derived
}

// IsProductive é um atalho usado pelos agregadores.
func IsProductive(rec domain.Record) bool {
	return Classify(rec) == domain.StatusProdutiva
}
