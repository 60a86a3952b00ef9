package reserve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	reserved map[string]bool
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{reserved: make(map[string]bool)}
}

func (f *fakeStore) Exists(_ context.Context, name string) (bool, error) {
	return f.reserved[name], f.err
}

func (f *fakeStore) Reserve(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.reserved[name] {
		return false, nil
	}
	f.reserved[name] = true
	return true, nil
}

func newTestRouter(store NameStore) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(store, nil).Routes(r)
	return r
}

func TestCheckName(t *testing.T) {
	store := newFakeStore()
	store.reserved["alice"] = true
	router := newTestRouter(store)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantExists bool
	}{
		{name: "reserved name", path: "/api/names/alice", wantStatus: http.StatusOK, wantExists: true},
		{name: "free name", path: "/api/names/bobby", wantStatus: http.StatusOK, wantExists: false},
		{name: "too short", path: "/api/names/x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp checkResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantExists, resp.Exists)
		})
	}
}

func TestReserveName(t *testing.T) {
	router := newTestRouter(newFakeStore())

	body := `{"name":"alice"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/names", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp reserveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Reserved)

	// Second reservation of the same name conflicts.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/names", strings.NewReader(body)))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Reserved)
}

func TestReserveRejectsBadInput(t *testing.T) {
	router := newTestRouter(newFakeStore())

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "invalid display name", body: `{"name":"<alice>"}`},
		{name: "empty name", body: `{"name":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/names", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStoreFailureMapsToServiceUnavailable(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("redis down")
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/names/alice", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/names", strings.NewReader(`{"name":"alice"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
