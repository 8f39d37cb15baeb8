// Package apiv1 exposes the order, PIN, and operational endpoints under
// /api/v1. Ops routes are guarded by the token minted from the admin secret.
package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/repository"
	"ppob-settlement/internal/infra/api"
	"ppob-settlement/internal/usecase"
)

type Server struct {
	orders   usecase.OrderUseCase
	pins     usecase.PinUseCase
	registry *usecase.PollerRegistry
	journal  repository.PendingTransactionRepository
	auth     *api.AuthManager
	secret   string
	log      *zerolog.Logger
}

func NewServer(
	orders usecase.OrderUseCase,
	pins usecase.PinUseCase,
	registry *usecase.PollerRegistry,
	journal repository.PendingTransactionRepository,
	auth *api.AuthManager,
	adminSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		orders:   orders,
		pins:     pins,
		registry: registry,
		journal:  journal,
		auth:     auth,
		secret:   adminSecret,
		log:      logger,
	}
}

// RegisterAPIV1 attaches all v1 routes to the router.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", s.handlePlaceOrder)
		r.Post("/pin/{sessionID}/press", s.handlePinPress)
		r.Post("/pin/{sessionID}/cancel", s.handlePinCancel)
		r.Post("/checkout/redirect", s.handleRedirect)

		r.Route("/ops", func(r chi.Router) {
			r.Post("/login", s.handleOpsLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.Guard)
				r.Post("/recheck/{reference}", s.handleRecheck)
				r.Get("/pending", s.handlePending)
			})
		})
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrNoReference):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSettlementBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

type placeOrderRequest struct {
	Kind        string `json:"kind"`
	UserID      string `json:"user_id"`
	CustomerRef string `json:"customer_ref"`
	ProductCode string `json:"product_code"`
	Amount      int64  `json:"amount"`
}

type placeOrderResponse struct {
	SessionID string `json:"session_id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	PinMode   string `json:"pin_mode"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	sessionID, order, err := s.orders.PlaceOrder(r.Context(), usecase.PlaceOrderRequest{
		Kind:        model.OrderKind(req.Kind),
		UserID:      req.UserID,
		CustomerRef: req.CustomerRef,
		ProductCode: req.ProductCode,
		Amount:      req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	mode, err := s.pins.StartSession(r.Context(), sessionID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		SessionID: sessionID,
		Reference: order.Reference.String(),
		Amount:    order.Amount,
		PinMode:   string(mode),
	})
}

type pinPressRequest struct {
	Digit string `json:"digit"`
}

type pinPressResponse struct {
	Mode              string        `json:"mode"`
	Submitted         bool          `json:"submitted"`
	Mismatch          bool          `json:"mismatch,omitempty"`
	Rejected          bool          `json:"rejected,omitempty"`
	Message           string        `json:"message,omitempty"`
	AttemptsRemaining int           `json:"attempts_remaining"`
	LockedUntil       *time.Time    `json:"locked_until,omitempty"`
	Outcome           *orderOutcome `json:"outcome,omitempty"`
}

type orderOutcome struct {
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Polling      bool   `json:"polling"`
}

func (s *Server) handlePinPress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req pinPressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Digit) != 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "digit required"})
		return
	}

	res, err := s.pins.Press(r.Context(), sessionID, req.Digit[0])
	if err != nil {
		writeError(w, err)
		return
	}

	resp := pinPressResponse{
		Mode:              string(res.Mode),
		Submitted:         res.Submitted,
		Mismatch:          res.Mismatch,
		Rejected:          res.Rejected,
		Message:           res.Message,
		AttemptsRemaining: res.AttemptsRemaining,
		LockedUntil:       res.LockedUntil,
	}
	if res.Outcome != nil {
		resp.Outcome = &orderOutcome{
			Reference:    res.Outcome.Reference.String(),
			Status:       string(res.Outcome.Status),
			Message:      res.Outcome.Message,
			SerialNumber: res.Outcome.SerialNumber,
			Polling:      res.Outcome.Polling,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePinCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.pins.Cancel(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

type redirectRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	URL    string `json:"url"`
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	var req redirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url required"})
		return
	}

	ref, ok, err := s.orders.HandleRedirect(r.Context(), req.UserID, req.Amount, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reference": ref.String(),
		"polling":   ok,
	})
}

func (s *Server) handleOpsLogin(w http.ResponseWriter, r *http.Request) {
	hdr := r.Header.Get("Authorization")
	if s.secret == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") ||
		strings.TrimSpace(hdr[7:]) != s.secret {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRecheck(w http.ResponseWriter, r *http.Request) {
	ref := model.TransactionReference(chi.URLParam(r, "reference"))
	snap, err := s.registry.CheckNow(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reference":    snap.Reference.String(),
		"state":        string(snap.State),
		"attempts":     snap.Attempts,
		"max_attempts": snap.MaxAttempts,
		"last_status":  string(snap.LastStatus),
	})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	rows, err := s.journal.ListUnresolvedOlderThan(r.Context(), time.Now(), 200)
	if err != nil {
		writeError(w, err)
		return
	}

	type pendingRow struct {
		Reference string    `json:"reference"`
		Kind      string    `json:"kind"`
		UserID    string    `json:"user_id"`
		Amount    int64     `json:"amount"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	out := make([]pendingRow, 0, len(rows))
	for _, tx := range rows {
		out = append(out, pendingRow{
			Reference: tx.Reference.String(),
			Kind:      string(tx.Kind),
			UserID:    tx.UserID,
			Amount:    tx.Amount,
			CreatedAt: tx.CreatedAt,
			UpdatedAt: tx.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}
