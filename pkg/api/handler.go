package api

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/cercaclasse/pkg/kit"
	"github.com/hazyhaar/cercaclasse/pkg/search"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns an http.Handler with the search API, the MCP endpoint,
// health, metrics and the search page.
func NewRouter(engine *search.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		search: searchEndpoint(engine, logger),
		health: healthEndpoint(engine),
	}

	mux.HandleFunc("GET /api/search", h.handleSearch)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mcpHandler := server.NewStreamableHTTPServer(NewMCPServer(engine, logger))
	for _, method := range []string{"GET", "POST", "DELETE"} {
		mux.Handle(method+" /mcp", mcpHandler)
	}

	page, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServerFS(page))

	return cors(mux)
}

type handler struct {
	search kit.Endpoint
	health kit.Endpoint
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := h.search(r.Context(), &searchReq{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.health(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
