package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rsham004/nz-electricity-chatbot/internal/integration"
	"github.com/rsham004/nz-electricity-chatbot/internal/repository"
	"github.com/rsham004/nz-electricity-chatbot/internal/usecases"
)

const (
	generationJSON = `{"total_generation_mw":5000,"generation_by_type":{"hydro":3000,"wind":800,"geothermal":700,"gas":400,"solar":100},"timestamp":"2025-07-30T12:00:00Z"}`
	pricesJSON     = `{"timestamp":"2025-07-30T12:00:00Z","prices":{"Auckland":150.50,"Wellington":148.20,"Christchurch":145.80,"Dunedin":143.90}}`
)

// newUpstream serves generation and prices; the emissions endpoint is down for maintenance
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/generation/current", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, generationJSON)
	})
	mux.HandleFunc("/v1/prices/spot/current", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pricesJSON)
	})
	mux.HandleFunc("/v1/emissions/current", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newUseCase(t *testing.T, repo repository.QueryRepository) *usecases.GridUseCase {
	t.Helper()
	upstream := newUpstream(t)
	return usecases.NewGridUseCase(integration.NewGridClient(upstream.URL+"/v1", 0, nil), repo, nil)
}
