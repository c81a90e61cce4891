// Package httpapi exposes the solver over HTTP and websockets, a
// Go-idiomatic analogue of original_source/game/api.py's FastAPI routes.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CrzPhil/Makiaveli/engine"
	"github.com/CrzPhil/Makiaveli/internal/auth"
	"github.com/CrzPhil/Makiaveli/internal/cache"
	"github.com/CrzPhil/Makiaveli/internal/database"
	"github.com/CrzPhil/Makiaveli/internal/game"
)

// Server wires the solver core to its storage, cache, and broadcast
// collaborators, and serves the HTTP/websocket surface.
type Server struct {
	store           *database.Store
	cache           *cache.Cache
	hub             *game.Hub
	signingKey      []byte
	defaultDeadline time.Duration
	log             *logrus.Entry
}

// New builds a Server. Any of store/cache/hub may be nil, in which case
// the corresponding side effect (persistence, caching, broadcast) is
// skipped — useful for tests and for running the HTTP surface without a
// full Postgres/Redis deployment.
func New(store *database.Store, c *cache.Cache, hub *game.Hub, signingKey []byte, defaultDeadline time.Duration, log *logrus.Logger) *Server {
	return &Server{
		store:           store,
		cache:           c,
		hub:             hub,
		signingKey:      signingKey,
		defaultDeadline: defaultDeadline,
		log:             log.WithField("component", "httpapi"),
	}
}

// Routes returns the server's handler, mountable directly or wrapped by
// additional middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/solve", s.handleSolve)
	mux.HandleFunc("GET /api/v1/solve/{id}", s.handleGetSolve)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return s.withAuth(mux)
}

// solveRequest mirrors engine.Input's JSON shape with its own tags so
// the wire contract doesn't silently change if engine.Input is
// refactored.
type solveRequest struct {
	Hand        []string   `json:"hand"`
	FloorGroups [][]string `json:"floorGroups"`
	Cross       []string   `json:"cross"`
	DeadlineMS  int        `json:"deadlineMs"`
}

type solveResponse struct {
	ID uuid.UUID `json:"id"`
	engine.Output
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	in := engine.Input{
		Hand:        req.Hand,
		FloorGroups: req.FloorGroups,
		Cross:       req.Cross,
		DeadlineMS:  req.DeadlineMS,
	}
	if in.DeadlineMS == 0 {
		in.DeadlineMS = int(s.defaultDeadline / time.Millisecond)
	}

	id := uuid.New()
	ctx := r.Context()
	log := s.log.WithField("request_id", id)

	sig, sigErr := signatureOf(in)
	if sigErr == nil && s.cache != nil {
		if cached, found, err := s.cache.Get(ctx, sig); err == nil && found {
			log.Debug("cache hit")
			writeJSON(w, http.StatusOK, solveResponse{ID: id, Output: cached})
			return
		} else if err != nil {
			log.WithError(err).Warn("cache lookup failed, solving fresh")
		}
	}

	out := engine.Solve(in)
	log.WithField("solvable", out.Solvable).Info("solve request handled")

	if out.Error != nil {
		writeJSON(w, statusFor(out.Error.Kind), solveResponse{ID: id, Output: out})
	} else {
		writeJSON(w, http.StatusOK, solveResponse{ID: id, Output: out})
	}

	if sigErr == nil && s.cache != nil && out.Error == nil {
		if err := s.cache.Set(ctx, sig, out); err != nil {
			log.WithError(err).Warn("cache store failed")
		}
	}
	if s.store != nil {
		rec := database.RecordOf(id, in, out, time.Now())
		if err := s.store.Save(ctx, rec); err != nil {
			log.WithError(err).Warn("persist solve history failed")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(ctx, game.SolveResultEvent{Type: "solve_result", RequestID: id, Output: out})
	}
}

func (s *Server) handleGetSolve(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "solve history unavailable", http.StatusServiceUnavailable)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "malformed id", http.StatusBadRequest)
		return
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("fetch solve history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket hub unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket accept failed")
		return
	}
	s.hub.Join(conn)
	defer s.hub.Leave(conn)

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

// withAuth requires a valid bearer token on every request except the
// websocket upgrade, which authenticates implicitly by being reachable
// only from an already-logged-in UI session in front of this service.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := auth.ParseToken(s.signingKey, token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func statusFor(kind engine.ErrorKind) int {
	switch kind {
	case engine.KindMalformedCode, engine.KindInvalidInput:
		return http.StatusBadRequest
	case engine.KindTimeout:
		return http.StatusGatewayTimeout
	case engine.KindReconstructionFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func signatureOf(in engine.Input) (engine.Signature, error) {
	hand, err := engine.ParseCards(in.Hand)
	if err != nil {
		return "", err
	}
	cross, err := engine.ParseCards(in.Cross)
	if err != nil {
		return "", err
	}
	pool := engine.PoolFromCards(hand)
	for _, c := range cross {
		pool.Add(c)
	}
	for _, codes := range in.FloorGroups {
		g, err := engine.ParseCards(codes)
		if err != nil {
			return "", err
		}
		for _, c := range g {
			pool.Add(c)
		}
	}
	return pool.Signature(), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
