package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-api/internal/domain"
)

func seedUser(t *testing.T, users *mockUserRepo) domain.User {
	t.Helper()
	user := domain.User{
		ID:      "u1",
		Email:   "a@b.com",
		Account: domain.Account{Username: "JohnDoe"},
		Token:   "tok-1",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func publishForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestPublishWithoutPicture(t *testing.T) {
	users := newMockUserRepo()
	offers := &mockOfferRepo{}
	user := seedUser(t, users)
	r := setupRouter(users, offers, &mockUploader{})

	body, contentType := publishForm(t, map[string]string{
		"title":       "Red Jacket",
		"description": "Barely worn",
		"price":       "25",
		"condition":   "Good",
		"city":        "Paris",
		"brand":       "Zara",
		"size":        "M",
		"color":       "Red",
	})
	req := httptest.NewRequest(http.MethodPost, "/offer/publish", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+user.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var offer map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &offer); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if offer["product_name"] != "Red Jacket" {
		t.Fatalf("expected product_name Red Jacket, got %v", offer["product_name"])
	}
	if offer["product_price"] != 25.0 {
		t.Fatalf("expected product_price 25, got %v", offer["product_price"])
	}
	if _, present := offer["product_image"]; present {
		t.Fatalf("product_image must be absent without a picture: %s", rec.Body.String())
	}

	owner, ok := offer["owner"].(map[string]interface{})
	if !ok || owner["_id"] != "u1" {
		t.Fatalf("expected owner u1, got %v", offer["owner"])
	}
	if len(offers.offers) != 1 {
		t.Fatalf("expected one stored offer, got %d", len(offers.offers))
	}
}

func TestPublishRequiresAuthentication(t *testing.T) {
	users := newMockUserRepo()
	offers := &mockOfferRepo{}
	r := setupRouter(users, offers, &mockUploader{})

	body, contentType := publishForm(t, map[string]string{"title": "Red Jacket"})
	req := httptest.NewRequest(http.MethodPost, "/offer/publish", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(offers.offers) != 0 {
		t.Fatalf("nothing must be stored before authentication, got %d offers", len(offers.offers))
	}
}

func TestSearchReturnsCountAndPage(t *testing.T) {
	offers := &mockOfferRepo{}
	for i := 0; i < 12; i++ {
		offers.offers = append(offers.offers, domain.Offer{
			ID:    fmt.Sprintf("o%d", i),
			Title: fmt.Sprintf("Offer %d", i),
			Price: float64(i * 10),
		})
	}
	r := setupRouter(newMockUserRepo(), offers, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/offers?priceMin=10&priceMax=50&sort=price-desc&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Count         int              `json:"count"`
		MatchedOffers []map[string]any `json:"matchedOffers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 5 {
		t.Fatalf("expected count 5 across all pages, got %d", body.Count)
	}
	if len(body.MatchedOffers) != 1 {
		t.Fatalf("expected 1 offer on page 2 of 5, got %d", len(body.MatchedOffers))
	}
	if body.MatchedOffers[0]["product_price"] != 10.0 {
		t.Fatalf("expected the cheapest match on the last descending page, got %v", body.MatchedOffers[0]["product_price"])
	}
}

func TestSearchEmptyResultIsAnArray(t *testing.T) {
	r := setupRouter(newMockUserRepo(), &mockOfferRepo{}, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/offers?title=nothing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"matchedOffers":[]`)) {
		t.Fatalf("expected an empty array, got %s", rec.Body.String())
	}
}

func TestFindOfferByID(t *testing.T) {
	offers := &mockOfferRepo{offers: []domain.Offer{{ID: "o1", Title: "Red Jacket", Price: 25}}}
	r := setupRouter(newMockUserRepo(), offers, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/offers/o1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var offer map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &offer); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if offer["_id"] != "o1" {
		t.Fatalf("expected offer o1, got %v", offer["_id"])
	}
}

func TestFindOfferNotFound(t *testing.T) {
	r := setupRouter(newMockUserRepo(), &mockOfferRepo{}, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/offers/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := setupRouter(newMockUserRepo(), &mockOfferRepo{}, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "This route does not exist" {
		t.Fatalf("expected fixed message, got %q", body["message"])
	}
}
