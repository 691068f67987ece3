package domain

import (
	"sort"
	"strings"
)

// Record é uma linha de atividade como veio da planilha: nome da coluna -> valor.
// Não há esquema fixo; os nomes de coluna podem vir com ou sem acento, ou com
// acentuação corrompida pela codificação. Use os acessores de campo do pacote
// activity em vez de indexar o mapa diretamente.
type Record map[string]string

// Clone devolve uma cópia rasa do registro. Registros ingeridos são tratados
// como imutáveis; edições sempre trabalham sobre uma cópia.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset é o conjunto de trabalho da sessão: os registros e a ordem das colunas
// de origem (necessária para exportar na mesma ordem do arquivo).
type Dataset struct {
	Headers []string `json:"headers"`
	Records []Record `json:"records"`
}

// Columns devolve os cabeçalhos conhecidos seguidos de qualquer chave extra
// presente nos registros, em ordem alfabética.
func (d Dataset) Columns() []string {
	seen := make(map[string]bool, len(d.Headers))
	cols := make([]string, 0, len(d.Headers))
	for _, h := range d.Headers {
		if !seen[h] {
			seen[h] = true
			cols = append(cols, h)
		}
	}
	var extras []string
	for _, rec := range d.Records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(cols, extras...)
}

// Status é a classificação de produtividade de uma atividade.
type Status string

const (
	StatusProdutiva   Status = "Produtiva"
	StatusImprodutiva Status = "Improdutiva"
	StatusPendente    Status = "Pendente"
)

// ParseStatus aceita o rótulo em português (com ou sem acento/caixa).
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "produtiva", "productive":
		return StatusProdutiva, true
	case "improdutiva", "unproductive":
		return StatusImprodutiva, true
	case "pendente", "pending":
		return StatusPendente, true
	}
	return "", false
}

// Draft é a edição manual de um registro: novo código de baixa e, quando o
// código não tem prefixo numérico, o status escolhido pelo usuário.
type Draft struct {
	Code   string `json:"cod_baixa"`
	Status Status `json:"status,omitempty"`
}

// CompositeKey identifica um registro para edição: WO + OS + contrato + data.
type CompositeKey struct {
	WorkOrder      string `json:"numero_wo"`
	SecondaryOrder string `json:"numero_os"`
	Contract       string `json:"contrato"`
	Date           string `json:"data"`
}

// Produtividade é o filtro de produtividade do painel.
type Produtividade string

const (
	ProdutividadeTodas        Produtividade = "all"
	ProdutividadeProdutivas   Produtividade = "productive"
	ProdutividadeImprodutivas Produtividade = "unproductive"
)

// FilterState são os filtros selecionados. Conjuntos vazios significam
// "sem restrição", nunca "excluir tudo".
type FilterState struct {
	Technicians   []string      `json:"technicians"`
	ActivityTypes []string      `json:"activityTypes"`
	Cities        []string      `json:"cities"`
	Productivity  Produtividade `json:"productivity"`
	SearchText    string        `json:"searchText"`
	StartDate     string        `json:"startDate"` // yyyy-mm-dd
	EndDate       string        `json:"endDate"`   // yyyy-mm-dd
}

// IsEmpty indica que nenhum filtro além da exclusão fixa está ativo.
func (f FilterState) IsEmpty() bool {
	return len(f.Technicians) == 0 && len(f.ActivityTypes) == 0 && len(f.Cities) == 0 &&
		(f.Productivity == "" || f.Productivity == ProdutividadeTodas) &&
		f.SearchText == "" && f.StartDate == "" && f.EndDate == ""
}

// Signature é uma representação canônica dos filtros, usada para detectar
// mudança de filtro (e voltar a tabela para a página 1).
func (f FilterState) Signature() string {
	norm := func(xs []string) string {
		c := append([]string(nil), xs...)
		sort.Strings(c)
		return strings.Join(c, "\x1f")
	}
	return strings.Join([]string{
		norm(f.Technicians), norm(f.ActivityTypes), norm(f.Cities),
		string(f.Productivity), f.SearchText, f.StartDate, f.EndDate,
	}, "\x1e")
}

// TechnicianProductivity é a produtividade agregada de um técnico.
type TechnicianProductivity struct {
	Name            string  `json:"name"`
	Count           int     `json:"count"`
	ProductiveCount int     `json:"productiveCount"`
	Productivity    float64 `json:"productivity"`
}

// ActivityCount conta atividades de um tipo.
type ActivityCount struct {
	Total      int `json:"total"`
	Productive int `json:"productive"`
}

// TypeCount é um ActivityCount rotulado, já com a produtividade calculada.
type TypeCount struct {
	Type         string  `json:"type"`
	Total        int     `json:"total"`
	Productive   int     `json:"productive"`
	Productivity float64 `json:"productivity"`
}

// NamedCount serve para bairros, faixas de horário e códigos de baixa.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TypeDuration é o tempo médio por tipo de atividade.
type TypeDuration struct {
	Type    string `json:"type"`
	AvgTime string `json:"avgTime"`
}

// KPIs são os indicadores do topo do painel.
type KPIs struct {
	Total             int     `json:"total"`
	Productive        int     `json:"productive"`
	Unproductive      int     `json:"unproductive"`
	Technicians       int     `json:"technicians"`
	AvgDuration       string  `json:"avgDuration"`
	TotalMinutes      float64 `json:"totalMinutes"`
	ItemsWithDuration int     `json:"itemsWithDuration"`
}

// KeyActivityCard é um cartão fixo do resumo de atividades chave.
type KeyActivityCard struct {
	Slot         string        `json:"slot"`
	Name         string        `json:"name"`
	Exact        ActivityCount `json:"exact"`
	Contains     ActivityCount `json:"contains"`
	Productivity float64       `json:"productivity"`
	Substituted  bool          `json:"substituted"`
}

// MapPoint é um bairro no mapa.
type MapPoint struct {
	Name  string  `json:"name"`
	City  string  `json:"city,omitempty"`
	Count int     `json:"count"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Atividade é o formato persistido no banco relacional.
type Atividade struct {
	ID                  int64    `json:"id,omitempty"`
	NumeroOS            string   `json:"numero_os,omitempty"`
	Contrato            string   `json:"contrato,omitempty"`
	DataAtividade       string   `json:"data_atividade,omitempty"`
	Recurso             string   `json:"recurso,omitempty"`
	StatusAtividade     string   `json:"status_atividade,omitempty"`
	TipoAtividade       string   `json:"tipo_atividade,omitempty"`
	CodBaixa1           string   `json:"cod_baixa_1,omitempty"`
	IntervaloTempo      string   `json:"intervalo_tempo,omitempty"`
	DuracaoMinutos      *int     `json:"duracao_minutos,omitempty"`
	Latitude            *float64 `json:"latitude,omitempty"`
	Longitude           *float64 `json:"longitude,omitempty"`
	Cidade              string   `json:"cidade,omitempty"`
	Bairro              string   `json:"bairro,omitempty"`
	TempoDeDeslocamento *int     `json:"tempo_de_deslocamento,omitempty"`
}
