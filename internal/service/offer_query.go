package service

import (
	"net/url"
	"strconv"
	"strings"

	"marketplace-api/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// BuildOfferQuery traduce los query params crudos de una busqueda a
// una especificacion validada. El parseo es permisivo: un parametro
// opcional mal formado se trata como ausente, nunca rechaza la request.
func BuildOfferQuery(params url.Values) domain.OfferQuery {
	return domain.OfferQuery{
		Title:    strings.TrimSpace(params.Get("title")),
		PriceMin: parsePrice(params.Get("priceMin")),
		PriceMax: parsePrice(params.Get("priceMax")),
		Sort:     parseSort(params.Get("sort")),
		Page:     parsePositiveInt(params.Get("page"), defaultPage),
		Limit:    parsePositiveInt(params.Get("limit"), defaultLimit),
	}
}

// parsePrice devuelve nil para valores ausentes, no numericos o
// negativos: el filtro simplemente no se aplica.
func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// parseSort solo reconoce los dos ordenes soportados; cualquier otro
// valor deja el orden de insercion.
func parseSort(raw string) domain.OfferSort {
	switch raw {
	case "price-asc":
		return domain.SortPriceAsc
	case "price-desc":
		return domain.SortPriceDesc
	default:
		return domain.SortNone
	}
}

// parsePositiveInt devuelve fallback para valores ausentes, no
// numericos o menores que 1.
func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
