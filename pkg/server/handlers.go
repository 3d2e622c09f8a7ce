package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"atlas-hq/creditgate/pkg/budget/costs"
	"atlas-hq/creditgate/pkg/budget/oracle"
)

// defaultRefusalLimit bounds the refusals listing when no limit is given.
const defaultRefusalLimit = 50

// admissionResponse is the payload of the admission check endpoint.
type admissionResponse struct {
	Action     string `json:"action"`
	CanProceed bool   `json:"can_proceed"`
	Balance    int64  `json:"balance"`
	Required   int64  `json:"required"`
	Deficit    int64  `json:"deficit,omitempty"`
}

// balanceResponse is the payload of the balance endpoint.
type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// balanceHandler reads the provider's current balance through the oracle.
// An unreachable provider answers 503: the daemon cannot know the balance,
// which is different from the balance being zero.
func (s *Server) balanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		balance, err := s.manager.Balance(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
	}
}

// costsHandler lists the registered action costs.
func (s *Server) costsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		writeJSON(w, http.StatusOK, s.manager.Actions())
	}
}

// refusalsHandler lists recent audit records, newest first.
func (s *Server) refusalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		limit := defaultRefusalLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		records, err := s.manager.RecentRefusals(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, records)
	}
}

// admissionHandler runs a non-enforcing admission check for the action named
// in the query string. A refused action answers 429 with the decision
// payload so callers can see the deficit; a provider outage answers 503.
func (s *Server) admissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		action := r.URL.Query().Get("action")
		if action == "" {
			writeError(w, http.StatusBadRequest, "action query parameter is required")
			return
		}

		decision, err := s.manager.CheckAdmission(r.Context(), action)
		if err != nil {
			switch {
			case errors.Is(err, costs.ErrUnknownAction):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, oracle.ErrBalanceUnavailable):
				writeError(w, http.StatusServiceUnavailable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		resp := admissionResponse{
			Action:     action,
			CanProceed: decision.CanProceed,
			Balance:    decision.Balance,
			Required:   decision.Required,
		}

		if !decision.CanProceed {
			resp.Deficit = decision.Deficit()
			writeJSON(w, http.StatusTooManyRequests, resp)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
