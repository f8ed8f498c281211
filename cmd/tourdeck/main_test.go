package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdeck/internal/api"
	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
	"tourdeck/internal/ui/coordinator"
)

func newListCoordinator(t *testing.T, country string) *coordinator.Coordinator {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tours/price-range":
			w.Write([]byte(`{"success":true,"data":{"minPrice":100,"maxPrice":5000,"currency":"MXN","count":11}}`))
		case "/tours":
			if r.URL.Query().Get("page") == "2" {
				w.Write([]byte(`{"success":true,"data":[{"id":"t11","title":"Night market walk","cityId":"C9","price":250,"currency":"MXN"}],"pagination":{"page":2,"limit":10,"total":11,"totalPages":2}}`))
				return
			}
			w.Write([]byte(`{"success":true,"data":[{"id":"t1","title":"Cenote swim","price":450,"currency":"MXN"}],"pagination":{"page":1,"limit":10,"total":11,"totalPages":2}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(api.Options{BaseURL: srv.URL})
	return coordinator.NewCoordinator(eventbus.NullBus{}, session.New(country), client, client, 10)
}

func TestRunListRestoresSharedPage(t *testing.T) {
	coord := newListCoordinator(t, "MX")

	var out bytes.Buffer
	err := runList(context.Background(), coord, "?userId=P1&countryId=MX&page=2", &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "t11")
	assert.Contains(t, text, "Night market walk")
	assert.Contains(t, text, "250 MXN")
	assert.NotContains(t, text, "Cenote swim")
	assert.Contains(t, text, "page 2 of 2, 11 tours")
	assert.Contains(t, text, "share: ?countryId=MX&page=2&userId=P1")
}

func TestRunListRequiresProvider(t *testing.T) {
	coord := newListCoordinator(t, "MX")

	err := runList(context.Background(), coord, "", &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderRequired)
}

func TestRunListRequiresCountry(t *testing.T) {
	coord := newListCoordinator(t, "")

	err := runList(context.Background(), coord, "userId=P1", &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCountryRequired)
}
