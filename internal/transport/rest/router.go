package rest

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/game"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/registry"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *game.Service
	Registry    *registry.Registry
	WSHandler   *ws.Handler
}

// NewRouter creates the API router. The game itself runs entirely over the
// WebSocket; the REST surface is a small read-only sidecar for health checks
// and lobby-screen data.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")

	v1.HandleFunc("/categories", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, c.GameService.Categories())
	}).Methods("GET", "OPTIONS")

	v1.HandleFunc("/stats", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]int{"activeRooms": c.Registry.Count()})
	}).Methods("GET", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
