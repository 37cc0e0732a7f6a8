package handler

import (
	"log/slog"
	"net/http"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/service"
)

// DashboardHandler serves the role home-page payloads and the donor
// record-donation action.
type DashboardHandler struct {
	dashboards *service.DashboardService
	donations  *service.DonationService
	logger     *slog.Logger
}

func NewDashboardHandler(dashboards *service.DashboardService, donations *service.DonationService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, donations: donations, logger: logger}
}

// HandleAdmin returns the admin dashboard payload.
//
// HTTP: GET /api/admin/dashboard
func (h *DashboardHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboards.Admin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// HandleDonor returns the acting donor's dashboard payload.
//
// HTTP: GET /api/donor/dashboard
func (h *DashboardHandler) HandleDonor(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("sign in to view the dashboard"))
		return
	}

	dash, err := h.dashboards.Donor(r.Context(), identity.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// HandleRecordDonation records a donation for the acting donor.
//
// HTTP: POST /api/donations
func (h *DashboardHandler) HandleRecordDonation(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var input service.DonationInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	donation, err := h.donations.Record(r.Context(), identity, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}
