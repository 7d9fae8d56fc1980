// internal/handlers/router.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jason-s-yu/yaniv/internal/cache"
	"github.com/jason-s-yu/yaniv/internal/database"
	"github.com/jason-s-yu/yaniv/internal/middleware"
	"github.com/julienschmidt/httprouter"
)

// NewRouter wires the websocket endpoint, the health check and the per-room
// history routes, wrapped in request logging.
func NewRouter(gs *GameServer) http.Handler {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		gs.Logger.WithField("path", r.URL.Path).Errorf("Panic serving request: %v", v)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	mux.HandlerFunc(http.MethodGet, "/ws", GameWSHandler(gs))
	mux.GET("/healthz", serveHealthCheck(gs))
	mux.GET("/rooms/:id/history", serveRoomHistory(gs))
	mux.GET("/rooms/:id/actions", serveRoomActions(gs))

	return middleware.LogMiddleware(gs.Logger)(mux)
}

func serveHealthCheck(gs *GameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"rooms":       gs.Registry.Len(),
			"connections": gs.Conns.Len(),
		})
	}
}

const maxHistoryLimit = 100

func serveRoomHistory(gs *GameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if gs.Results == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "round history is disabled"})
			return
		}

		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		rounds, err := gs.Results.ScoreHistory(r.Context(), p.ByName("id"), limit)
		if err != nil {
			gs.Logger.WithField("room", p.ByName("id")).Errorf("Failed to load round history: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load history"})
			return
		}
		if rounds == nil {
			rounds = []database.RoundRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"roomId": p.ByName("id"), "rounds": rounds})
	}
}

func serveRoomActions(gs *GameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if gs.Actions == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "action log is disabled"})
			return
		}
		actions, err := gs.Actions.RoomActions(r.Context(), p.ByName("id"))
		if err != nil {
			gs.Logger.WithField("room", p.ByName("id")).Errorf("Failed to load room actions: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load actions"})
			return
		}
		if actions == nil {
			actions = []cache.ActionRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"roomId": p.ByName("id"), "actions": actions})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
