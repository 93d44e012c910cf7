package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/service"
)

// OfferHandler mantiene dependencias para endpoints de ofertas.
type OfferHandler struct {
	logger    *zap.Logger
	offerServ *service.OfferService
}

func NewOfferHandler(logger *zap.Logger, offerServ *service.OfferService) *OfferHandler {
	return &OfferHandler{
		logger:    logger,
		offerServ: offerServ,
	}
}

// Publish maneja POST /offer/publish (multipart form, ruta protegida).
func (h *OfferHandler) Publish(c *gin.Context) {
	owner, ok := GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": service.ErrMissingToken.Error()})
		return
	}

	input := service.PublishOfferInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       parseFormPrice(c.PostForm("price")),
		Condition:   c.PostForm("condition"),
		City:        c.PostForm("city"),
		Brand:       c.PostForm("brand"),
		Size:        c.PostForm("size"),
		Color:       c.PostForm("color"),
	}

	picture, err := formPicture(c)
	if err != nil {
		h.logger.Warn("invalid picture upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not read picture"})
		return
	}

	offer, err := h.offerServ.Publish(c.Request.Context(), owner, input, picture)
	if err != nil {
		h.logger.Error("publish offer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// Search maneja GET /offers.
func (h *OfferHandler) Search(c *gin.Context) {
	query := service.BuildOfferQuery(c.Request.URL.Query())

	offers, total, err := h.offerServ.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("search offers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if offers == nil {
		offers = []domain.Offer{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         total,
		"matchedOffers": offers,
	})
}

// Find maneja GET /offers/:id.
func (h *OfferHandler) Find(c *gin.Context) {
	offer, err := h.offerServ.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOfferNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "no offer found with this id"})
			return
		}
		h.logger.Error("find offer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, offer)
}

// parseFormPrice tolera precios ausentes o mal formados: quedan en 0
// en vez de rechazar la publicacion.
func parseFormPrice(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// formPicture extrae la imagen opcional del form-data. Ausencia no es
// error; un archivo presente pero ilegible si lo es.
func formPicture(c *gin.Context) (*service.Picture, error) {
	fileHeader, err := c.FormFile("picture")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &service.Picture{
		Data:     data,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}, nil
}
