package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Offer representa un anuncio publicado por una cuenta.
type Offer struct {
	ID          string        `json:"_id"`
	Title       string        `json:"product_name"`
	Description string        `json:"product_description"`
	Price       float64       `json:"product_price"`
	Details     []OfferDetail `json:"product_details"`
	Image       *Image        `json:"product_image,omitempty"`
	Owner       OfferOwner    `json:"owner"`
	CreatedAt   time.Time     `json:"-"`
}

// OfferOwner es la referencia al dueño de la oferta, reducida a la
// proyeccion publica de la cuenta.
type OfferOwner struct {
	ID      string  `json:"_id"`
	Account Account `json:"account"`
}

// OfferDetail es un atributo etiquetado de la oferta. La lista de
// detalles conserva el orden de publicacion y cada elemento se
// serializa como un objeto de una sola clave, p. ej. {"MARQUE": "Zara"}.
type OfferDetail struct {
	Label string
	Value string
}

func (d OfferDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{d.Label: d.Value})
}

func (d *OfferDetail) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("offer detail must have exactly one label, got %d", len(m))
	}
	for label, value := range m {
		d.Label = label
		d.Value = value
	}
	return nil
}

// Image guarda la referencia a un recurso subido al hosting de imagenes.
type Image struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
}

// Ordenamiento soportado en la busqueda de ofertas.
type OfferSort int

const (
	SortNone OfferSort = iota
	SortPriceAsc
	SortPriceDesc
)

// OfferQuery es la especificacion validada de una busqueda: filtros,
// orden y paginacion. Se construye a partir de los query params y
// nunca se persiste.
type OfferQuery struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
	Sort     OfferSort
	Page     int
	Limit    int
}

// Offset devuelve cuantos resultados hay que saltar para llegar a la
// pagina pedida.
func (q OfferQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
