// Package server is the thin HTTP adapter wrapping a sim.Simulator:
// REST endpoints for spawn/path/accident/blockage operations and a
// websocket stream pushing tick events to connected clients. The
// engine itself runs single-threaded cooperative ticks; this package
// serializes external calls onto it via the simulator's own mutex.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"urbannav/backend/network"
	"urbannav/backend/sim"
	"urbannav/backend/trafficconfig"
)

// Options configures the server instance.
type Options struct {
	TickInterval time.Duration // how often the background ticker advances the engine
	ReportPath   string
}

// Server wraps a running Simulator with an HTTP+websocket surface.
type Server struct {
	Engine *sim.Simulator
	Opt    Options

	upgrader websocket.Upgrader
}

// New builds a Server around an already-constructed Simulator.
func New(engine *sim.Simulator, opt Options) *Server {
	if opt.TickInterval <= 0 {
		opt.TickInterval = time.Second
	}
	return &Server{
		Engine: engine,
		Opt:    opt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gorilla/mux router exposing every endpoint.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/time", s.handleTime).Methods(http.MethodGet)
	r.HandleFunc("/api/tick", s.handleTick).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles", s.handleListVehicles).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles", s.handleSpawnVehicle).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles/random", s.handleSpawnRandom).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicles/{id}", s.handleGetVehicle).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicles/{id}", s.handleRemoveVehicle).Methods(http.MethodDelete)
	r.HandleFunc("/api/path", s.handlePath).Methods(http.MethodGet)
	r.HandleFunc("/api/accidents", s.handleListAccidents).Methods(http.MethodGet)
	r.HandleFunc("/api/accidents", s.handleCreateAccident).Methods(http.MethodPost)
	r.HandleFunc("/api/accidents/{id}/resolve", s.handleResolveAccident).Methods(http.MethodPost)
	r.HandleFunc("/api/blockages", s.handleListBlockages).Methods(http.MethodGet)
	r.HandleFunc("/api/blockages", s.handleBlockRoad).Methods(http.MethodPost)
	r.HandleFunc("/api/blockages/unblock", s.handleUnblockRoad).Methods(http.MethodPost)
	r.HandleFunc("/api/congestion", s.handleCongestion).Methods(http.MethodGet)
	r.HandleFunc("/api/congestion/predict", s.handlePredictCongestion).Methods(http.MethodGet)
	r.HandleFunc("/ws/stream", s.handleStream)
	return r
}

// Serve registers the router on the default ServeMux.
func (s *Server) Serve() {
	http.Handle("/", s.Router())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.State())
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.SimTime())
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Tick())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Engine.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.AllVehicles())
}

type spawnRequest struct {
	Mode  string `json:"mode"`
	Start string `json:"start"`
	Goal  string `json:"goal"`
}

func (s *Server) handleSpawnVehicle(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Mode == "" {
		req.Mode = string(network.ModeCar)
	}
	v, err := s.Engine.SpawnVehicle(network.Mode(req.Mode), req.Start, req.Goal)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleSpawnRandom(w http.ResponseWriter, r *http.Request) {
	count := 1
	if qs := r.URL.Query().Get("count"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			count = v
		}
	}
	var distribution *trafficconfig.TimePeriodMix
	var body struct {
		Distribution *trafficconfig.TimePeriodMix `json:"distribution"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			distribution = body.Distribution
		}
	}
	writeJSON(w, s.Engine.SpawnRandom(count, distribution))
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	v, ok := s.Engine.GetVehicle(id)
	if !ok {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleRemoveVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.Engine.RemoveVehicle(id) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, goal := q.Get("start"), q.Get("goal")
	mode := q.Get("mode")
	if mode == "" {
		mode = string(network.ModeCar)
	}
	path, cost, err := s.Engine.Path(start, goal, network.Mode(mode))
	if err != nil {
		writeJSON(w, map[string]any{"path": nil, "cost": nil})
		return
	}
	writeJSON(w, map[string]any{"path": path, "cost": cost})
}

func (s *Server) handleListAccidents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Accidents())
}

type accidentRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleCreateAccident(w http.ResponseWriter, r *http.Request) {
	var req accidentRequest
	json.NewDecoder(r.Body).Decode(&req)
	acc, err := s.Engine.CreateAccident(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, acc)
}

func (s *Server) handleResolveAccident(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, map[string]bool{"success": s.Engine.ResolveAccident(id)})
}

func (s *Server) handleListBlockages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.BlockedRoads())
}

type blockRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (s *Server) handleBlockRoad(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	writeJSON(w, map[string]bool{"success": s.Engine.BlockRoad(req.From, req.To, req.Reason)})
}

func (s *Server) handleUnblockRoad(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	writeJSON(w, map[string]bool{"success": s.Engine.UnblockRoad(req.From, req.To)})
}

func (s *Server) handleCongestion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.CongestionReport())
}

func (s *Server) handlePredictCongestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	steps := 10
	if qs := q.Get("steps"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			steps = v
		}
	}
	writeJSON(w, map[string]float64{"probability": s.Engine.PredictCongestion(from, to, steps)})
}

// handleStream upgrades to a websocket and pushes a tick report plus
// its events every Opt.TickInterval until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.Opt.TickInterval)
	defer ticker.Stop()

	for range ticker.C {
		report := s.Engine.Tick()
		events := s.Engine.Events()
		payload := map[string]any{"report": report, "events": events}
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
}
