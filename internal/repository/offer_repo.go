package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
)

// OfferRepository define el contrato de persistencia para ofertas.
type OfferRepository interface {
	Create(ctx context.Context, offer domain.Offer) error
	GetByID(ctx context.Context, id string) (domain.Offer, error)
	Search(ctx context.Context, query domain.OfferQuery) ([]domain.Offer, int, error)
}

// PgOfferRepository implementa OfferRepository usando pgxpool.
type PgOfferRepository struct {
	pool *pgxpool.Pool
}

func NewPgOfferRepository(pool *pgxpool.Pool) *PgOfferRepository {
	return &PgOfferRepository{pool: pool}
}

func (r *PgOfferRepository) Create(ctx context.Context, offer domain.Offer) error {
	const query = `
		INSERT INTO offers (id, title, description, price, details, image, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	details, err := json.Marshal(offer.Details)
	if err != nil {
		return err
	}
	image, err := marshalNullable(offer.Image)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		offer.ID,
		offer.Title,
		offer.Description,
		offer.Price,
		details,
		image,
		offer.Owner.ID,
		offer.CreatedAt,
	)
	return err
}

// offerColumns son las columnas que necesita scanOffer, con el dueño
// reducido a su proyeccion publica.
const offerColumns = `
	o.id, o.title, o.description, o.price, o.details, o.image, o.created_at,
	u.id, u.username, u.avatar
`

func (r *PgOfferRepository) GetByID(ctx context.Context, id string) (domain.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		JOIN users u ON u.id = o.owner_id
		WHERE o.id = $1`

	return scanOffer(r.pool.QueryRow(ctx, query, id))
}

// Search aplica filtros, orden y paginacion, y cuenta por separado el
// total de ofertas que cumplen el filtro antes de paginar.
func (r *PgOfferRepository) Search(ctx context.Context, query domain.OfferQuery) ([]domain.Offer, int, error) {
	where, args := searchFilterSQL(query)

	var total int
	countQuery := "SELECT COUNT(*) FROM offers o" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := `
		SELECT ` + offerColumns + `
		FROM offers o
		JOIN users u ON u.id = o.owner_id` +
		where + searchOrderSQL(query) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, query.Limit, query.Offset())

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, offer)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return offers, total, nil
}

// searchFilterSQL traduce la especificacion de busqueda a una clausula
// WHERE con placeholders posicionales. Sin filtros devuelve cadena vacia.
func searchFilterSQL(q domain.OfferQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if q.Title != "" {
		args = append(args, q.Title)
		conds = append(conds, fmt.Sprintf("o.title ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if q.PriceMin != nil {
		args = append(args, *q.PriceMin)
		conds = append(conds, fmt.Sprintf("o.price >= $%d", len(args)))
	}
	if q.PriceMax != nil {
		args = append(args, *q.PriceMax)
		conds = append(conds, fmt.Sprintf("o.price <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// searchOrderSQL devuelve la clausula ORDER BY para el orden pedido.
// Sin orden explicito se conserva el orden de insercion.
func searchOrderSQL(q domain.OfferQuery) string {
	switch q.Sort {
	case domain.SortPriceAsc:
		return " ORDER BY o.price ASC"
	case domain.SortPriceDesc:
		return " ORDER BY o.price DESC"
	default:
		return " ORDER BY o.created_at ASC"
	}
}

func scanOffer(row pgx.Row) (domain.Offer, error) {
	var (
		o       domain.Offer
		details []byte
		image   []byte
		avatar  []byte
	)

	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&o.Price,
		&details,
		&image,
		&o.CreatedAt,
		&o.Owner.ID,
		&o.Owner.Account.Username,
		&avatar,
	)
	if err != nil {
		return domain.Offer{}, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &o.Details); err != nil {
			return domain.Offer{}, err
		}
	}
	if len(image) > 0 {
		var img domain.Image
		if err := json.Unmarshal(image, &img); err != nil {
			return domain.Offer{}, err
		}
		o.Image = &img
	}
	if len(avatar) > 0 {
		var img domain.Image
		if err := json.Unmarshal(avatar, &img); err != nil {
			return domain.Offer{}, err
		}
		o.Owner.Account.Avatar = &img
	}

	return o, nil
}
