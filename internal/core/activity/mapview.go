package activity

import (
	"math"
	"strconv"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

// NeighborhoodGroup é um bairro do mapa antes da geocodificação.
type NeighborhoodGroup struct {
	Name      string
	City      string
	Count     int
	Lat       float64
	Lon       float64
	HasCoords bool
}

// Point converte o grupo em ponto de mapa com as coordenadas informadas.
func (g NeighborhoodGroup) Point(lat, lon float64) domain.MapPoint {
	return domain.MapPoint{Name: g.Name, City: g.City, Count: g.Count, Lat: lat, Lon: lon}
}

// GroupNeighborhoods agrupa os registros por bairro normalizado, na ordem
// em que os bairros aparecem. A cidade é a do primeiro registro do grupo; as
// coordenadas são as do primeiro registro que tiver latitude e longitude
// válidas.
func GroupNeighborhoods(records []domain.Record) []NeighborhoodGroup {
	var order []string
	groups := make(map[string]*NeighborhoodGroup)
	for _, rec := range records {
		name := NormalizeNeighborhood(ValueOr(rec, FieldNeighborhood, ""))
		if name == "" {
			continue
		}
		g, ok := groups[name]
		if !ok {
			g = &NeighborhoodGroup{Name: name, City: ValueOr(rec, FieldCity, "")}
			groups[name] = g
			order = append(order, name)
		}
		g.Count++
		if !g.HasCoords {
			if lat, lon, ok := Coordinates(rec); ok {
				g.Lat, g.Lon, g.HasCoords = lat, lon, true
			}
		}
	}

	out := make([]NeighborhoodGroup, 0, len(order))
	for _, name := range order {
		out = append(out, *groups[name])
	}
	return out
}

// Coordinates lê latitude e longitude do registro. Aceita vírgula decimal.
func Coordinates(rec domain.Record) (float64, float64, bool) {
	lat, ok := parseCoord(ValueOr(rec, FieldLatitude, ""))
	if !ok {
		return 0, 0, false
	}
	lon, ok := parseCoord(ValueOr(rec, FieldLongitude, ""))
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
