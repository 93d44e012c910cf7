package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/upload"
)

var ErrOfferNotFound = errors.New("offer not found")

// OfferService coordina la publicacion y busqueda de ofertas.
type OfferService struct {
	logger   *zap.Logger
	offers   repository.OfferRepository
	uploader upload.Uploader
}

func NewOfferService(logger *zap.Logger, offers repository.OfferRepository, uploader upload.Uploader) *OfferService {
	return &OfferService{
		logger:   logger,
		offers:   offers,
		uploader: uploader,
	}
}

type PublishOfferInput struct {
	Title       string
	Description string
	Price       float64
	Condition   string
	City        string
	Brand       string
	Size        string
	Color       string
}

// Picture es la imagen adjunta en el form-data de publicacion.
type Picture struct {
	Data     []byte
	MimeType string
}

// Publish crea una oferta a nombre de la cuenta autenticada. Si hay
// imagen se sube primero: un fallo del hosting aborta la publicacion
// entera, nunca queda una oferta guardada a medias sin su imagen.
func (s *OfferService) Publish(ctx context.Context, owner domain.User, input PublishOfferInput, picture *Picture) (domain.Offer, error) {
	offer := domain.Offer{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		// El orden de los detalles es fijo y significativo para el front.
		Details: []domain.OfferDetail{
			{Label: "MARQUE", Value: input.Brand},
			{Label: "TAILLE", Value: input.Size},
			{Label: "ÉTAT", Value: input.Condition},
			{Label: "COULEUR", Value: input.Color},
			{Label: "EMPLACEMENT", Value: input.City},
		},
		Owner: domain.OfferOwner{
			ID:      owner.ID,
			Account: owner.Account,
		},
		CreatedAt: time.Now().UTC(),
	}

	if picture != nil {
		image, err := s.uploader.Upload(ctx, picture.Data, picture.MimeType)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("image upload failed", zap.Error(err))
			}
			return domain.Offer{}, err
		}
		offer.Image = &image
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return domain.Offer{}, err
	}

	return offer, nil
}

// Search ejecuta la especificacion de busqueda y devuelve la pagina
// pedida junto con el total de coincidencias antes de paginar.
func (s *OfferService) Search(ctx context.Context, query domain.OfferQuery) ([]domain.Offer, int, error) {
	return s.offers.Search(ctx, query)
}

// Find busca una oferta por id. Un id inexistente no es un error del
// sistema: se traduce a ErrOfferNotFound.
func (s *OfferService) Find(ctx context.Context, id string) (domain.Offer, error) {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Offer{}, ErrOfferNotFound
		}
		return domain.Offer{}, err
	}
	return offer, nil
}
