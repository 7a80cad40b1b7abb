package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/titleguard/pkg/auth"
	pkgcache "github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/services/item/application/api"
	"github.com/ghuser/titleguard/services/item/application/handlers"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/models"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
	"github.com/ghuser/titleguard/services/item/infrastructure/notify"
)

type memRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Item
}

func (r *memRepo) Save(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *memRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.OrgID != orgID {
		return nil, itemdomain.ErrItemNotFound
	}
	return &it, nil
}

func (r *memRepo) FindByOrgID(_ context.Context, orgID uuid.UUID, _ repositories.QueryOpts) ([]*models.Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Item
	for _, it := range r.items {
		if it.OrgID == orgID {
			out = append(out, &it)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) FindByType(context.Context, uuid.UUID, models.ItemType) ([]*models.Item, error) {
	return nil, nil
}

func (r *memRepo) Update(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return itemdomain.ErrItemNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = *item
	return nil
}

func (r *memRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memRepo) Exists(_ context.Context, orgID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	return ok && it.OrgID == orgID, nil
}

type memMessages struct {
	mu   sync.Mutex
	msgs []*pkgcache.CachedMessage
}

func (m *memMessages) Push(_ context.Context, msg *pkgcache.CachedMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append([]*pkgcache.CachedMessage{msg}, m.msgs...)
	return nil
}

func (m *memMessages) Recent(_ context.Context, orgID uuid.UUID, n int) ([]*pkgcache.CachedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*pkgcache.CachedMessage{}
	for _, msg := range m.msgs {
		if msg.OrgID == orgID && len(out) < n {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fixture struct {
	router http.Handler
	repo   *memRepo
	orgID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &memRepo{items: map[uuid.UUID]models.Item{}}
	svcs := &appsvcs.Services{
		Item:     appsvcs.NewItemService(repo, nil, nil, logger.Nop()),
		Messages: notify.NewMessageCenter(&memMessages{}, nil, nil, logger.Nop()),
	}
	orgID := uuid.New()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Anonymous") == "" {
				req = req.WithContext(auth.WithOrgID(req.Context(), orgID))
			}
			next.ServeHTTP(w, req)
		})
	})
	api.Mount(r, svcs)
	return &fixture{router: r, repo: repo, orgID: orgID}
}

func (f *fixture) seed(t models.ItemType, title string) models.Item {
	now := time.Now().UTC()
	it := models.Item{ID: uuid.New(), OrgID: f.orgID, Type: t, Title: models.ItemTitle(title), CreatedAt: now, UpdatedAt: now}
	f.repo.items[it.ID] = it
	return it
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestPostItem(t *testing.T) {
	tests := []struct {
		name       string
		body       handlers.CreateItemRequest
		wantStatus int
		wantField  string
	}{
		{"valid component", handlers.CreateItemRequest{Type: "Component", Title: "Homepage Banner"}, http.StatusCreated, ""},
		{"component with slash", handlers.CreateItemRequest{Type: "Component", Title: "a/b"}, http.StatusUnprocessableEntity, "title"},
		{"folder with slash", handlers.CreateItemRequest{Type: "Folder", Title: "a/b"}, http.StatusCreated, ""},
		{"unknown type", handlers.CreateItemRequest{Type: "Widget", Title: "ok"}, http.StatusUnprocessableEntity, "type"},
		{"missing title", handlers.CreateItemRequest{Type: "Component"}, http.StatusUnprocessableEntity, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.do(t, http.MethodPost, "/items", tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantField != "" {
				var resp struct {
					Fields map[string]string `json:"fields"`
				}
				_ = json.NewDecoder(rr.Body).Decode(&resp)
				if _, ok := resp.Fields[tt.wantField]; !ok {
					t.Errorf("expected field error for %q, got %v", tt.wantField, resp.Fields)
				}
				return
			}
			var item handlers.ItemResponse
			if err := json.NewDecoder(rr.Body).Decode(&item); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if item.OrgID != f.orgID || item.Title != tt.body.Title {
				t.Errorf("unexpected item: %+v", item)
			}
		})
	}
}

func TestPutItem_RejectedTitleReturnsDiagnosticAndPostsMessage(t *testing.T) {
	f := newFixture(t)
	it := f.seed(models.ItemTypeComponent, "Old Title")

	rr := f.do(t, http.MethodPut, "/items/"+it.ID.String(), handlers.SaveItemRequest{Title: "Caf\u00e9/Menu"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
	var rej handlers.RejectionResponse
	if err := json.NewDecoder(rr.Body).Decode(&rej); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rej.Message.MessageTitle != "Invalid Component Title" {
		t.Errorf("message_title: got %q", rej.Message.MessageTitle)
	}
	wantBody := "The name of the component contains invalid characters.  Remove or change \u00e9,/ and try saving again."
	if rej.Message.MessageBody != wantBody {
		t.Errorf("message_body:\n got %q\nwant %q", rej.Message.MessageBody, wantBody)
	}
	if f.repo.items[it.ID].Title != "Old Title" {
		t.Errorf("title was saved despite rejection: %q", f.repo.items[it.ID].Title)
	}

	rr = f.do(t, http.MethodGet, "/messages", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("messages: expected 200, got %d", rr.Code)
	}
	var msgs []handlers.MessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ItemID != it.ID.String() || msgs[0].MessageBody != wantBody {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestPutItem_ValidTitleSaves(t *testing.T) {
	f := newFixture(t)
	it := f.seed(models.ItemTypeComponent, "Old Title")

	rr := f.do(t, http.MethodPut, "/items/"+it.ID.String(), handlers.SaveItemRequest{Title: "New Title"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp handlers.SaveItemResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Item.Title != "New Title" || resp.Created {
		t.Errorf("unexpected response: %+v", resp)
	}
	if f.repo.items[it.ID].Title != "New Title" {
		t.Errorf("stored title: got %q", f.repo.items[it.ID].Title)
	}
}

func TestItemRoutes_Errors(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New().String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		anonymous  bool
		wantStatus int
	}{
		{"get unknown item", http.MethodGet, "/items/" + missing, nil, false, http.StatusNotFound},
		{"get malformed id", http.MethodGet, "/items/not-a-uuid", nil, false, http.StatusBadRequest},
		{"put unknown item", http.MethodPut, "/items/" + missing, handlers.SaveItemRequest{Title: "x"}, false, http.StatusNotFound},
		{"delete unknown item", http.MethodDelete, "/items/" + missing, nil, false, http.StatusNotFound},
		{"anonymous list", http.MethodGet, "/items", nil, true, http.StatusUnauthorized},
		{"anonymous check", http.MethodPost, "/titles/check", handlers.CheckTitleRequest{Title: "x"}, true, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if tt.body != nil {
				_ = json.NewEncoder(&buf).Encode(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, &buf)
			if tt.anonymous {
				req.Header.Set("X-Anonymous", "1")
			}
			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGetListDelete(t *testing.T) {
	f := newFixture(t)
	it := f.seed(models.ItemTypePage, "index")

	rr := f.do(t, http.MethodGet, "/items/"+it.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/items?limit=500", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var list handlers.ListItemsResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 || list.Limit != 100 {
		t.Errorf("unexpected list: %+v", list)
	}

	rr = f.do(t, http.MethodDelete, "/items/"+it.ID.String(), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if _, ok := f.repo.items[it.ID]; ok {
		t.Error("item still stored after delete")
	}
}

func TestCheckTitle(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/titles/check", handlers.CheckTitleRequest{Title: "Valid Title"})
	var ok handlers.CheckTitleResponse
	_ = json.NewDecoder(rr.Body).Decode(&ok)
	if rr.Code != http.StatusOK || !ok.Valid || ok.Message != nil {
		t.Fatalf("valid title: got %d %+v", rr.Code, ok)
	}

	rr = f.do(t, http.MethodPost, "/titles/check", handlers.CheckTitleRequest{Title: "a\\b"})
	var bad handlers.CheckTitleResponse
	_ = json.NewDecoder(rr.Body).Decode(&bad)
	if rr.Code != http.StatusOK || bad.Valid || bad.Message == nil {
		t.Fatalf("invalid title: got %d %+v", rr.Code, bad)
	}
	if bad.Message.MessageBody != "The name of the component contains an invalid character.  Remove or change \\ and try saving again." {
		t.Errorf("body: got %q", bad.Message.MessageBody)
	}

	msgs := f.do(t, http.MethodGet, "/messages", nil)
	var list []handlers.MessageResponse
	_ = json.NewDecoder(msgs.Body).Decode(&list)
	if len(list) != 0 {
		t.Errorf("check must not post messages, got %d", len(list))
	}
}
