package http

import (
	"context"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/service"
)

type mockUserRepo struct {
	usersByEmail map[string]domain.User
	usersByToken map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByEmail: make(map[string]domain.User),
		usersByToken: make(map[string]domain.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByEmail[user.Email] = user
	m.usersByToken[user.Token] = user
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByToken(_ context.Context, token string) (domain.User, error) {
	user, ok := m.usersByToken[token]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

type mockOfferRepo struct {
	offers []domain.Offer
}

func (m *mockOfferRepo) Create(_ context.Context, offer domain.Offer) error {
	m.offers = append(m.offers, offer)
	return nil
}

func (m *mockOfferRepo) GetByID(_ context.Context, id string) (domain.Offer, error) {
	for _, offer := range m.offers {
		if offer.ID == id {
			return offer, nil
		}
	}
	return domain.Offer{}, pgx.ErrNoRows
}

func (m *mockOfferRepo) Search(_ context.Context, query domain.OfferQuery) ([]domain.Offer, int, error) {
	var matched []domain.Offer
	for _, offer := range m.offers {
		if query.Title != "" && !strings.Contains(strings.ToLower(offer.Title), strings.ToLower(query.Title)) {
			continue
		}
		if query.PriceMin != nil && offer.Price < *query.PriceMin {
			continue
		}
		if query.PriceMax != nil && offer.Price > *query.PriceMax {
			continue
		}
		matched = append(matched, offer)
	}

	total := len(matched)

	switch query.Sort {
	case domain.SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	offset := query.Offset()
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + query.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], total, nil
}

type mockUploader struct {
	image domain.Image
	err   error
}

func (m *mockUploader) Upload(_ context.Context, _ []byte, _ string) (domain.Image, error) {
	if m.err != nil {
		return domain.Image{}, m.err
	}
	return m.image, nil
}

func setupRouter(users *mockUserRepo, offers *mockOfferRepo, uploader *mockUploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	userSvc := service.NewUserService(logger, users, nil)
	offerSvc := service.NewOfferService(logger, offers, uploader)
	return NewRouter(logger, userSvc, NewUserHandler(logger, userSvc), NewOfferHandler(logger, offerSvc))
}
