// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package bridge exposes simulation runs over HTTP for the visualization
// front end: POST /run starts a run and GET /ws streams its layers.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/observability"
	"github.com/lifefork/lifefork/internal/sim"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/xdg"
)

const writeWait = 5 * time.Second

// maxRequestBody bounds the optional JSON body of POST /run.
const maxRequestBody = 1 << 16

// SettingsLoader returns the settings for a new run. It is called once per
// request so edits to the settings file apply without a restart.
type SettingsLoader func() (*config.Settings, error)

// RunFunc executes every scenario of settings, writing layers to sink.
type RunFunc func(ctx context.Context, settings *config.Settings, sink snapshot.Sink) (*sim.RunResult, error)

// RunRequest optionally overrides settings for one run.
type RunRequest struct {
	Layers *int   `json:"layers,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

// ScenarioSummary describes one finished scenario.
type ScenarioSummary struct {
	Label  string `json:"label"`
	Worlds int    `json:"worlds"`
	Layers int    `json:"layers"`
}

// RunResponse is the body of every POST /run reply.
type RunResponse struct {
	Status    string            `json:"status"`
	RunID     string            `json:"run_id,omitempty"`
	OutputDir string            `json:"output_dir,omitempty"`
	Scenarios []ScenarioSummary `json:"scenarios,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Handler serves the bridge endpoints. Only one run executes at a time.
type Handler struct {
	cfg      config.BridgeConfig
	load     SettingsLoader
	hub      *Hub
	metrics  *observability.Metrics
	run      RunFunc
	busy     atomic.Bool
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics records runs and stream clients in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithRunFunc replaces sim.RunAll.
func WithRunFunc(fn RunFunc) Option {
	return func(h *Handler) { h.run = fn }
}

// NewHandler creates a bridge handler streaming through hub.
func NewHandler(cfg config.BridgeConfig, load SettingsLoader, hub *Hub, opts ...Option) *Handler {
	h := &Handler{
		cfg:  cfg,
		load: load,
		hub:  hub,
		run:  sim.RunAll,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount registers the bridge routes on srv.
func (h *Handler) Mount(srv *observability.Server) {
	srv.Handle("POST /run", http.HandlerFunc(h.ServeRun))
	srv.Handle("OPTIONS /run", http.HandlerFunc(h.ServePreflight))
	srv.Handle("GET /ws", http.HandlerFunc(h.ServeStream))
}

// Ready reports whether a new run would be accepted.
func (h *Handler) Ready() bool {
	return !h.busy.Load()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.cfg.AllowOrigin == "" || h.cfg.AllowOrigin == "*" {
		return true
	}
	return r.Header.Get("Origin") == h.cfg.AllowOrigin
}

func (h *Handler) setCORS(w http.ResponseWriter) {
	origin := h.cfg.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *Handler) reply(w http.ResponseWriter, status int, resp RunResponse) {
	h.setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Debug("run response not delivered", "error", err)
	}
}

func (h *Handler) countRun(status string) {
	if h.metrics != nil {
		h.metrics.RunsTotal.WithLabelValues(status).Inc()
	}
}

// ServePreflight answers CORS preflight requests.
func (h *Handler) ServePreflight(w http.ResponseWriter, _ *http.Request) {
	h.setCORS(w)
	w.WriteHeader(http.StatusOK)
}

// ServeRun runs every configured scenario and replies with a summary.
func (h *Handler) ServeRun(w http.ResponseWriter, r *http.Request) {
	if !h.busy.CompareAndSwap(false, true) {
		h.countRun("busy")
		h.reply(w, http.StatusConflict, RunResponse{Status: "error", Error: "a run is already in progress"})
		return
	}
	defer h.busy.Store(false)

	var req RunRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		h.countRun("bad_request")
		h.reply(w, http.StatusBadRequest, RunResponse{Status: "error", Error: "invalid request body: " + err.Error()})
		return
	}

	settings, err := h.load()
	if err == nil {
		err = req.apply(settings)
	}
	if err != nil {
		h.countRun("invalid_settings")
		h.reply(w, http.StatusBadRequest, RunResponse{Status: "error", Error: err.Error()})
		return
	}

	outputDir := settings.OutputDir
	if outputDir == "" {
		if outputDir, err = xdg.RunsDir(); err != nil {
			h.countRun("error")
			h.reply(w, http.StatusInternalServerError, RunResponse{Status: "error", Error: err.Error()})
			return
		}
	}
	files := snapshot.NewFileWriter(outputDir)

	ctx, cancel := h.runContext(r.Context())
	defer cancel()

	start := time.Now()
	result, err := h.run(ctx, settings, snapshot.MultiSink{files, h.hub})
	if h.metrics != nil {
		h.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		slog.ErrorContext(ctx, "bridge run failed", "error", err)
		h.countRun("error")
		h.reply(w, http.StatusInternalServerError, RunResponse{Status: "error", Error: err.Error()})
		return
	}

	resp := RunResponse{
		Status:    "ok",
		RunID:     result.RunID,
		OutputDir: files.RunDir(result.RunID),
		Scenarios: make([]ScenarioSummary, len(result.Scenarios)),
	}
	for i, sc := range result.Scenarios {
		resp.Scenarios[i] = ScenarioSummary{Label: sc.Label, Worlds: len(sc.Worlds), Layers: sc.Layers}
	}
	h.countRun("ok")
	h.reply(w, http.StatusOK, resp)
}

func (h *Handler) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.RunTimeout > 0 {
		return context.WithTimeout(parent, h.cfg.RunTimeout)
	}
	return context.WithCancel(parent)
}

func (req RunRequest) apply(s *config.Settings) error {
	if req.Layers != nil {
		if *req.Layers < 0 {
			return config.ErrInvalid("layers", "must be >= 0, got %d", *req.Layers)
		}
		s.Layers = *req.Layers
	}
	if req.Seed != nil {
		s.Seed = *req.Seed
	}
	return nil
}

// ServeStream upgrades to a websocket and pushes every layer frame until
// the client disconnects or the hub closes.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ch := h.hub.Subscribe()
	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
		defer h.metrics.StreamClients.Dec()
	}
	slog.Debug("stream client connected", "remote", r.RemoteAddr)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unsubscribe(ch)
				return
			}
		}
	}()

	for data := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Unsubscribe(ch)
			break
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		slog.Debug("stream close not delivered", "error", err)
	}
	_ = conn.Close()
	<-readerDone
	slog.Debug("stream client disconnected", "remote", r.RemoteAddr)
}
