package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"cashflow/internal/config"
	"cashflow/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a single game session over HTTP. The session itself is not
// goroutine safe, so every request that touches it holds mu.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	mu      sync.Mutex
	session *game.Session
	keys    *keyStore
	mux     *chi.Mux
}

type commandResponse struct {
	Message      string            `json:"message"`
	Confirmation game.Confirmation `json:"confirmation"`
	State        game.Dashboard    `json:"state"`
}

func New(cfg config.APIConfig, logger *slog.Logger, session *game.Session) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if session == nil {
		session = game.NewDefaultSession()
	}
	size := cfg.IdempotencySize
	if size <= 0 {
		size = 1024
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		session: session,
		keys:    newKeyStore(size),
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)

		r.Post("/payday", s.handlePayday)
		r.Post("/assets/real-estate", s.handleBuyRealEstate)
		r.Post("/assets/stocks", s.handleBuyStock)
		r.Post("/assets/gold", s.handleBuyGold)
		r.Post("/assets/{index}/sell", s.handleSell)

		r.Post("/loan/take", s.handleTakeLoan)
		r.Post("/loan/repay", s.handleRepayLoan)
		r.Post("/flows", s.handleFlow)

		r.Put("/cash", s.handleSetValue(func(v int64) game.Command { return game.SetCash{Value: v} }))
		r.Put("/salary", s.handleSetValue(func(v int64) game.Command { return game.SetSalary{Value: v} }))
		r.Put("/expenses", s.handleSetValue(func(v int64) game.Command { return game.SetExpenses{Value: v} }))
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.session.Dashboard()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, game.DefaultCatalog())
}

func (s *Server) handlePayday(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, game.Payday{})
}

func (s *Server) handleBuyRealEstate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PropertyType string `json:"property_type"`
		Units        int64  `json:"units"`
		Price        int64  `json:"price"`
		DownPayment  int64  `json:"down_payment"`
		Cashflow     int64  `json:"cashflow"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.execute(w, r, game.BuyRealEstate{
		PropertyType: in.PropertyType,
		Units:        in.Units,
		Price:        in.Price,
		DownPayment:  in.DownPayment,
		Cashflow:     in.Cashflow,
	})
}

func (s *Server) handleBuyStock(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Ticker   string `json:"ticker"`
		Quantity int64  `json:"quantity"`
		Price    int64  `json:"price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.execute(w, r, game.BuyStock{
		Ticker:   strings.ToUpper(strings.TrimSpace(in.Ticker)),
		Quantity: in.Quantity,
		Price:    in.Price,
	})
}

func (s *Server) handleBuyGold(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Quantity int64 `json:"quantity"`
		Price    int64 `json:"price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.execute(w, r, game.BuyGold{Quantity: in.Quantity, Price: in.Price})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset index")
		return
	}
	var in struct {
		Price    int64 `json:"price"`
		Quantity int64 `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.execute(w, r, game.SellAsset{Index: index, Price: in.Price, Quantity: in.Quantity})
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, game.TakeLoan{})
}

func (s *Server) handleRepayLoan(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, game.RepayLoan{})
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.execute(w, r, game.RecordFlow{Amount: in.Amount})
}

func (s *Server) handleSetValue(build func(int64) game.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Value int64 `json:"value"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.execute(w, r, build(in.Value))
	}
}

// execute runs one command against the session. A repeated Idempotency-Key
// is rejected; a key whose command failed may be retried.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, cmd game.Command) {
	reqID := middleware.GetReqID(r.Context())
	key := idempotencyKey(r)
	if key != "" {
		if err := s.keys.Claim(key); err != nil {
			s.log.Warn("command replayed", "request_id", reqID, "command", commandName(cmd), "key", key)
			writeDomainError(w, err)
			return
		}
	}

	s.mu.Lock()
	out, err := s.session.Execute(cmd)
	state := s.session.Dashboard()
	s.mu.Unlock()

	if err != nil {
		if key != "" {
			s.keys.Release(key)
		}
		s.log.Warn("command rejected", "request_id", reqID, "command", commandName(cmd), "err", err)
		writeDomainError(w, err)
		return
	}
	s.log.Info("command applied", "request_id", reqID, "command", string(out.Action), "amount", out.Amount, "cash", out.Cash)
	writeJSON(w, http.StatusOK, commandResponse{Message: out.Message, Confirmation: out, State: state})
}

func commandName(cmd game.Command) string {
	switch cmd.(type) {
	case game.Payday:
		return string(game.ActionPayday)
	case game.BuyRealEstate:
		return string(game.ActionBuyRealEstate)
	case game.BuyStock:
		return string(game.ActionBuyStock)
	case game.BuyGold:
		return string(game.ActionBuyGold)
	case game.SellAsset:
		return string(game.ActionSell)
	case game.TakeLoan:
		return string(game.ActionTakeLoan)
	case game.RepayLoan:
		return string(game.ActionRepayLoan)
	case game.RecordFlow:
		return string(game.ActionFlow)
	case game.SetCash:
		return string(game.ActionSetCash)
	case game.SetSalary:
		return string(game.ActionSetSalary)
	case game.SetExpenses:
		return string(game.ActionSetExpenses)
	default:
		return "unknown"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrDuplicateIdempotency):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrOverSell), errors.Is(err, game.ErrNoLoanOutstanding):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}
