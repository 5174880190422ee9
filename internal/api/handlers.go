package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/dashboard"
	"github.com/kingrea/claimdesk/internal/session"
)

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type claimsResponse struct {
	Claims []claims.Claim `json:"claims"`
	Count  int            `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       s.version,
		UptimeSeconds: int64(s.uptime().Seconds()),
	})
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var (
		status    claims.Status
		claimType claims.ClaimType
		err       error
	)
	if raw := query.Get("status"); raw != "" {
		if status, err = claims.ParseStatus(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if raw := query.Get("type"); raw != "" {
		if claimType, err = claims.ParseClaimType(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Printf("api: list claims: %v", err)
		writeError(w, http.StatusInternalServerError, "unable to list claims")
		return
	}
	list = dashboard.Filter(list, func(c claims.Claim) bool {
		return (status == "" || c.Status == status) && (claimType == "" || c.ClaimType == claimType)
	})
	writeJSON(w, http.StatusOK, claimsResponse{Claims: list, Count: len(list)})
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	claim, err := s.repo.GetByID(r.Context(), id)
	if errors.Is(err, claims.ErrClaimNotFound) {
		writeError(w, http.StatusNotFound, "claim "+id+" not found")
		return
	}
	if err != nil {
		s.logger.Printf("api: get claim %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "unable to load claim")
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	role, err := session.ParseRole(r.PathValue("role"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Printf("api: dashboard %s: %v", role, err)
		writeError(w, http.StatusInternalServerError, "unable to list claims")
		return
	}
	switch role {
	case session.RoleCustomer:
		writeJSON(w, http.StatusOK, dashboard.ForCustomer(list))
	case session.RoleAdjuster:
		writeJSON(w, http.StatusOK, dashboard.ForAdjuster(list, s.clock(), 0))
	default:
		writeJSON(w, http.StatusOK, dashboard.ForAdmin(list))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
