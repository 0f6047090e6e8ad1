package wishlist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/cartflow/internal/identity"
)

func serve(t *testing.T, router http.Handler, userID, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(identity.WithUser(context.Background(), userID))
	}
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestHandler(t *testing.T) {
	svc, mem := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes(r)

	t.Run("add twice then list", func(t *testing.T) {
		for range 2 {
			code, resp := serve(t, r, "u1", http.MethodPost, "/wishlist/items", `{"product_id":1}`)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, true, resp["success"])
		}

		code, resp := serve(t, r, "u1", http.MethodGet, "/wishlist", "")

		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, resp["items"], 1)
	})

	t.Run("empty wishlist lists no items", func(t *testing.T) {
		code, resp := serve(t, r, "u2", http.MethodGet, "/wishlist", "")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, []any{}, resp["items"])
	})

	t.Run("move to cart", func(t *testing.T) {
		code, resp := serve(t, r, "u1", http.MethodPost, "/wishlist/move", `{"product_id":1}`)

		require.Equal(t, http.StatusOK, code)
		entry := resp["entry"].(map[string]any)
		assert.EqualValues(t, 1, entry["quantity"])
		assert.Empty(t, mem.WishlistEntries("u1"))
	})

	t.Run("remove missing entry", func(t *testing.T) {
		code, resp := serve(t, r, "u1", http.MethodDelete, "/wishlist/items/77", "")

		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "notfound", resp["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		code, resp := serve(t, r, "u1", http.MethodPost, "/wishlist/items", `{"product_id":`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid", resp["message"])
	})

	t.Run("anonymous is unauthorized before the request is parsed", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			path   string
			body   string
		}{
			{name: "clear", method: http.MethodDelete, path: "/wishlist"},
			{name: "read", method: http.MethodGet, path: "/wishlist"},
			{name: "add with empty body", method: http.MethodPost, path: "/wishlist/items"},
			{name: "add with malformed body", method: http.MethodPost, path: "/wishlist/items", body: "not-json"},
			{name: "remove with bad id", method: http.MethodDelete, path: "/wishlist/items/abc"},
			{name: "move with malformed body", method: http.MethodPost, path: "/wishlist/move", body: `{`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				code, resp := serve(t, r, "", tt.method, tt.path, tt.body)

				assert.Equal(t, http.StatusUnauthorized, code)
				assert.Equal(t, "unauthorized", resp["message"])
			})
		}
	})
}
