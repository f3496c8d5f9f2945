package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	rds "edu-games-subscription/internal/infra/redis"
	"edu-games-subscription/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr translates domain sentinels into HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidPlanType),
		errors.Is(err, domain.ErrInvalidDateRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type verifyPaymentRequest struct {
	UserID         string     `json:"userId"`
	PlanType       string     `json:"planType"`
	OrderID        string     `json:"orderId"`
	PaymentID      string     `json:"paymentId"`
	Signature      string     `json:"signature"`
	SelectedModule *string    `json:"selectedModule,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.limiter != nil && req.UserID != "" {
		ok, err := s.limiter.Allow(ctx, rds.VerifyPaymentKey(req.UserID), s.rateLimit, s.rateWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
		} else if !ok {
			http.Error(w, "Too many verification attempts", http.StatusTooManyRequests)
			return
		}
	}

	plan, err := model.ParsePlanType(req.PlanType)
	if err != nil {
		writeErr(w, err)
		return
	}

	res, err := s.purchases.RecordVerifiedPayment(ctx, usecase.PurchaseRequest{
		UserID:         req.UserID,
		PlanType:       plan,
		OrderID:        req.OrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		SelectedModule: req.SelectedModule,
		EndDate:        req.EndDate,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request, userID string) {
	listing, err := s.entitlements.ListSubscriptions(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleCheckSubscription(w http.ResponseWriter, r *http.Request, userID, planType string) {
	plan, err := model.ParsePlanType(planType)
	if err != nil {
		writeErr(w, err)
		return
	}
	check, err := s.entitlements.HasAccess(r.Context(), userID, plan)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleUpgradeQuote(w http.ResponseWriter, r *http.Request, userID, planType string) {
	plan, err := model.ParsePlanType(planType)
	if err != nil {
		writeErr(w, err)
		return
	}
	quote, err := s.pricing.ComputeUpgradePrice(r.Context(), userID, plan)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sub, err := s.admin.SetStatus(r.Context(), id, model.SubscriptionStatus(req.Status))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type extendRequest struct {
	Days int `json:"days"`
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request, id string) {
	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sub, err := s.admin.Extend(r.Context(), id, req.Days)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleCheckExpired(w http.ResponseWriter, r *http.Request) {
	res, err := s.trigger.RunOnce(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.auth.CheckAPIKey(r.Header.Get("X-API-Key")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(time.Now())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
