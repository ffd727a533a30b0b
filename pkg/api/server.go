package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperarb/pkg/exchange"
	"github.com/uhyunpark/hyperarb/pkg/market"
	"github.com/uhyunpark/hyperarb/pkg/strategy"
	"github.com/uhyunpark/hyperarb/pkg/util"
)

// CycleSource reports the latest strategy cycle.
type CycleSource interface {
	LastCycle() (strategy.CycleSummary, bool)
}

// Config wires the server to the rest of the bot.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Wallet         common.Address
	Signer         common.Address
	Source         string
	DryRun         bool
	Vault          mo.Option[common.Address]
	ExpiryWindow   time.Duration
}

// Server handles REST API and WebSocket connections
type Server struct {
	cfg      Config
	registry *market.Registry
	builder  *exchange.Builder
	nonces   *exchange.NonceManager
	cycles   CycleSource // optional
	clock    util.Clock
	router   *mux.Router
	hub      *Hub // WebSocket hub
	http     *http.Server
	log      *zap.SugaredLogger
}

// NewServer creates a new API server and starts its WebSocket hub
func NewServer(cfg Config, registry *market.Registry, builder *exchange.Builder, nonces *exchange.NonceManager, cycles CycleSource, clock util.Clock, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		builder:  builder,
		nonces:   nonces,
		cycles:   cycles,
		clock:    clock,
		router:   mux.NewRouter(),
		hub:      NewHub(log),
		log:      log,
	}
	go s.hub.Run()

	s.setupRoutes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")
	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/orders/preview", s.handlePreviewOrder).Methods("POST")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Prometheus scrape endpoint
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// SetCycleSource attaches the strategy runner. Call it before Start.
func (s *Server) SetCycleSource(c CycleSource) { s.cycles = c }

// Hub returns the event hub so the strategy can publish to it
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the router wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Infow("api_server_starting", "addr", s.cfg.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Wallet:    s.cfg.Wallet.Hex(),
		Signer:    s.cfg.Signer.Hex(),
		Source:    s.cfg.Source,
		DryRun:    s.cfg.DryRun,
		WSClients: s.hub.ClientCount(),
	}
	if s.nonces != nil {
		resp.LastNonce = s.nonces.Last()
	}
	if s.cycles != nil {
		if last, ok := s.cycles.LastCycle(); ok {
			resp.LastCycle = &last
		}
	}
	respondJSON(w, resp)
}

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, MarketsResponse{
		Tokens: s.registry.List(),
		Pairs:  s.registry.Pairs(),
	})
}

func (s *Server) handlePreviewOrder(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	var kind market.Kind
	switch strings.ToLower(req.Kind) {
	case "perp", "":
		kind = market.Perp
	case "spot":
		kind = market.Spot
	default:
		respondError(w, http.StatusBadRequest, "invalid kind", "kind must be perp or spot")
		return
	}

	token, err := s.registry.Lookup(kind, req.Coin)
	if err != nil {
		respondError(w, http.StatusNotFound, "market not found", err.Error())
		return
	}

	act, err := s.builder.Action(exchange.OrderParams{
		Token:            token,
		IsBuy:            req.IsBuy,
		MarkPx:           req.MarkPx,
		Amount:           req.Amount,
		AmountIsNotional: req.Notional,
		ReduceOnly:       req.ReduceOnly,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	// Previews never consume a nonce from the signer's sequence.
	nonce := req.Nonce
	if nonce == 0 {
		nonce = uint64(s.clock.Now().UnixMilli())
	}
	env := exchange.SigningEnvelope{
		Action:       act,
		Nonce:        nonce,
		ExpiresAfter: nonce + uint64(s.cfg.ExpiryWindow.Milliseconds()),
		VaultAddress: s.cfg.Vault,
	}
	cid, err := env.ConnectionID()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode failed", err.Error())
		return
	}

	respondJSON(w, PreviewResponse{
		Action:       act,
		Nonce:        env.Nonce,
		ExpiresAfter: env.ExpiresAfter,
		ConnectionID: cid.Hex(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
