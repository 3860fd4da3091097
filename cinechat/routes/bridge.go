// cinechat/routes/bridge.go
package routes

import (
	"cinechat/cinechat/controllers"
	"cinechat/cinechat/middlewares"
	"cinechat/cinechat/utils/types"
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// stateResponse is the whole view model the rendering layer reads back
// after every state_changed event.
type stateResponse struct {
	Phase           string          `json:"phase"`
	Username        string          `json:"username"`
	ActiveSessionID string          `json:"active_session_id"`
	InFlight        bool            `json:"in_flight"`
	Sessions        []types.Session `json:"sessions"`
}

// PosterSource serves mirrored poster bytes by their original URL.
type PosterSource interface {
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

// BridgeRoutes exposes the client core to a local rendering layer:
// identity acquisition, the full view state, query submission, session
// management, and mirrored posters. Everything except login/signup and
// the websocket requires the stored opaque token.
func BridgeRoutes(app *controllers.AppController, notifier *Notifier, posters PosterSource) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := app.Login(r.Context(), req.Email, req.Password); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		identity := app.Identity()
		json.NewEncoder(w).Encode(map[string]string{
			"token":    identity.Token,
			"username": identity.Username,
			"email":    identity.Email,
		})
	})

	r.Post("/signup", func(w http.ResponseWriter, r *http.Request) {
		var req types.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := app.Signup(r.Context(), req.Username, req.Email, req.Password); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(app.Token))

		gr.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			state := stateResponse{
				Phase:    string(app.Phase()),
				Username: app.Identity().Username,
				InFlight: app.InFlight(),
				Sessions: []types.Session{},
			}
			if store := app.Store(); store != nil {
				state.ActiveSessionID = store.ActiveID()
				state.Sessions = store.List()
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(state)
		})

		// POST /query : submit the active session's next user turn. The
		// pipeline runs detached; progress arrives over /ws.
		gr.Post("/query", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Query string `json:"query"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			go app.Submit(context.Background(), req.Query)
			w.WriteHeader(http.StatusAccepted)
		})

		gr.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
			store := app.Store()
			if store == nil {
				http.Error(w, "not ready", http.StatusConflict)
				return
			}
			session := store.Create()
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(session)
		})

		gr.Post("/sessions/{session_id}/select", func(w http.ResponseWriter, r *http.Request) {
			store := app.Store()
			if store == nil {
				http.Error(w, "not ready", http.StatusConflict)
				return
			}
			store.Select(chi.URLParam(r, "session_id"))
			w.WriteHeader(http.StatusNoContent)
		})

		// Deletion confirmation is the rendering layer's job; by the time
		// the call lands here it is final.
		gr.Delete("/sessions/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			store := app.Store()
			if store == nil {
				http.Error(w, "not ready", http.StatusConflict)
				return
			}
			store.Delete(chi.URLParam(r, "session_id"))
			w.WriteHeader(http.StatusNoContent)
		})

		// GET /posters?src=<url> : the mirrored copy of an enriched
		// poster image. 404 when the cache is disabled or cold.
		gr.Get("/posters", func(w http.ResponseWriter, r *http.Request) {
			if posters == nil {
				http.Error(w, "poster cache disabled", http.StatusNotFound)
				return
			}
			src := r.URL.Query().Get("src")
			if src == "" {
				http.Error(w, "missing src", http.StatusBadRequest)
				return
			}
			data, err := posters.Fetch(r.Context(), src)
			if err != nil {
				http.Error(w, "poster not cached", http.StatusNotFound)
				return
			}
			w.Write(data)
		})

		gr.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			app.Logout()
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		notifier.add(conn)
		defer notifier.remove(conn)

		// Read loop only detects the peer going away; the bridge never
		// accepts commands over the socket.
		ctx := r.Context()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	})

	return r
}
