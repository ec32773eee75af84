package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cozy_nook/internal/models"
	"cozy_nook/internal/service"
)

func adminRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer admin-token")
	return req
}

func TestProducts_PublicList(t *testing.T) {
	catalog := &mockCatalog{products: []models.Product{
		{ID: "p1", Name: "Chocolate Chip Cookies", Price: 3, Quantity: 30, Image: "images/cookies.jpg"},
	}}
	r := newTestRouter(&service.Service{Catalog: catalog})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var got []models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || got[0].Quantity != 30 {
		t.Fatalf("unexpected products: %+v", got)
	}

	catalog.err = fmt.Errorf("%w: get products", service.ErrNotFound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing product status=%d", w.Code)
	}
	if catalog.lastID != "nope" {
		t.Fatalf("lastID=%q", catalog.lastID)
	}
}

func TestProducts_CreateAcceptsStringOrNumber(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantPrice string
		wantQty   string
	}{
		{"numbers", `{"name":"Scones","price":2.75,"quantity":12}`, "2.75", "12"},
		{"strings", `{"name":"Scones","price":"2.75","quantity":"12"}`, "2.75", "12"},
		{"raw form text", `{"name":"Scones","price":"abc","quantity":""}`, "abc", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &mockCatalog{product: models.Product{ID: "new"}}
			s := &service.Service{Catalog: catalog, Sessions: loggedIn("admin", true)}
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, adminRequest(http.MethodPost, "/api/v1/admin/products", tc.body))
			if w.Code != http.StatusCreated {
				t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
			}
			if catalog.lastInput.Price != tc.wantPrice || catalog.lastInput.Quantity != tc.wantQty {
				t.Fatalf("input=%+v", catalog.lastInput)
			}
		})
	}
}

func TestProducts_CreateRejectsBoolPrice(t *testing.T) {
	s := &service.Service{Catalog: &mockCatalog{}, Sessions: loggedIn("admin", true)}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(http.MethodPost, "/api/v1/admin/products", `{"name":"x","price":true}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestProducts_UpdatePassesOnlyProvidedFields(t *testing.T) {
	catalog := &mockCatalog{product: models.Product{ID: "p1"}}
	s := &service.Service{Catalog: catalog, Sessions: loggedIn("admin", true)}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(http.MethodPut, "/api/v1/admin/products/p1", `{"price":5}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	p := catalog.lastPatch
	if catalog.lastID != "p1" || p.Price == nil || *p.Price != "5" {
		t.Fatalf("unexpected patch for %q: %+v", catalog.lastID, p)
	}
	if p.Name != nil || p.Description != nil || p.Quantity != nil || p.Image != nil {
		t.Fatalf("absent fields must stay nil: %+v", p)
	}
}

func TestProducts_AdminErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		err    error
		want   int
	}{
		{"create invalid price", http.MethodPost, "/api/v1/admin/products", `{"name":"x","price":"-1"}`, fmt.Errorf("%w: price", service.ErrValidation), http.StatusBadRequest},
		{"update missing", http.MethodPut, "/api/v1/admin/products/p9", `{"name":"x"}`, fmt.Errorf("%w: product %q", service.ErrNotFound, "p9"), http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/v1/admin/products/p9", "", service.ErrNotFound, http.StatusNotFound},
		{"decrement too many", http.MethodPost, "/api/v1/admin/products/p1/decrement", `{"amount":99}`, service.ErrInsufficientStock, http.StatusConflict},
		{"unexpected", http.MethodDelete, "/api/v1/admin/products/p1", "", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Catalog: &mockCatalog{err: tc.err}, Sessions: loggedIn("admin", true)}
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, adminRequest(tc.method, tc.path, tc.body))
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusInternalServerError {
				var out map[string]string
				_ = json.Unmarshal(w.Body.Bytes(), &out)
				if out["error"] != errInternal {
					t.Fatalf("internal error leaked: %v", out)
				}
			}
		})
	}
}

func TestProducts_DecrementPassesAmount(t *testing.T) {
	catalog := &mockCatalog{product: models.Product{ID: "p1", Quantity: 7}}
	s := &service.Service{Catalog: catalog, Sessions: loggedIn("admin", true)}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(http.MethodPost, "/api/v1/admin/products/p1/decrement", `{"amount":3}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if catalog.lastID != "p1" || catalog.lastAmount != 3 {
		t.Fatalf("got id=%q amount=%d", catalog.lastID, catalog.lastAmount)
	}
}

func TestProducts_AdminRoutesRejectShoppers(t *testing.T) {
	catalog := &mockCatalog{}
	s := &service.Service{Catalog: catalog, Sessions: loggedIn("alice", false)}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(http.MethodDelete, "/api/v1/admin/products/p1", ""))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", w.Code)
	}
	if catalog.lastID != "" {
		t.Fatalf("catalog must not be touched, got lastID=%q", catalog.lastID)
	}
}
