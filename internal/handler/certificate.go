package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/metrics"
	"github.com/tahsin/project-nourish/internal/middleware"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
	"github.com/tahsin/project-nourish/internal/service"
)

// CertificateHandler serves certificate issuance, listing and the
// printable HTML rendering.
type CertificateHandler struct {
	svc       *service.CertificateService
	collector *metrics.Collector
	tmpl      *template.Template
	logger    *slog.Logger
}

// NewCertificateHandler parses the certificate template from templateDir
// once at startup; a broken template is a deploy error, not a request
// error.
func NewCertificateHandler(
	svc *service.CertificateService,
	collector *metrics.Collector,
	templateDir string,
	logger *slog.Logger,
) (*CertificateHandler, error) {
	tmpl, err := template.ParseFiles(filepath.Join(templateDir, "certificate.html"))
	if err != nil {
		return nil, fmt.Errorf("handler: parsing certificate template: %w", err)
	}
	return &CertificateHandler{svc: svc, collector: collector, tmpl: tmpl, logger: logger}, nil
}

type issueRequest struct {
	DonorID string `json:"donorId"`
}

// HandleIssueAnnual issues an annual certificate for a donor. Admin only
// (the route table enforces the role; the service re-checks).
//
// HTTP: POST /api/certificates
func (h *CertificateHandler) HandleIssueAnnual(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	role := middleware.RoleFromContext(r.Context())

	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cert, err := h.svc.Issue(r.Context(), identity, role, req.DonorID, model.CertificateAnnual)
	if err != nil {
		writeError(w, err)
		return
	}

	h.collector.RecordCertificateIssued(string(cert.Type))
	writeJSON(w, http.StatusCreated, cert)
}

// HandleIssueSelf issues a self-generated certificate for the acting
// donor. No tenure gate applies.
//
// HTTP: POST /api/certificates/self
func (h *CertificateHandler) HandleIssueSelf(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("sign in to generate a certificate"))
		return
	}
	role := middleware.RoleFromContext(r.Context())

	cert, err := h.svc.Issue(r.Context(), identity, role, identity.Subject, model.CertificateSelfGenerated)
	if err != nil {
		writeError(w, err)
		return
	}

	h.collector.RecordCertificateIssued(string(cert.Type))
	writeJSON(w, http.StatusCreated, cert)
}

// HandleList returns certificates: all of them for admins, the caller's
// own for donors.
//
// HTTP: GET /api/certificates
func (h *CertificateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("sign in to list certificates"))
		return
	}

	var (
		certs []model.Certificate
		err   error
	)
	if middleware.RoleFromContext(r.Context()) == model.RoleAdmin {
		certs, err = h.svc.ListAll(r.Context(), repository.ListOptions{Limit: parseLimit(r)})
	} else {
		certs, err = h.svc.ListForDonor(r.Context(), identity.Subject)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, certs)
}

// certificateView is the template payload for the printable page.
type certificateView struct {
	DonorName  string
	TypeLabel  string
	SelfIssued bool
	IssuedAt   string
	ID         string
}

// HandlePrint renders the printable "Certificate of Appreciation" page.
// html/template escapes the donor name, so a markup-bearing name can
// never break out of the document.
//
// HTTP: GET /api/certificates/{id}/print
func (h *CertificateHandler) HandlePrint(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	role := middleware.RoleFromContext(r.Context())

	cert, err := h.svc.Get(r.Context(), identity, role, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	view := certificateView{
		DonorName:  cert.DonorName,
		TypeLabel:  "Annual Certificate of Appreciation",
		SelfIssued: cert.Type == model.CertificateSelfGenerated,
		IssuedAt:   cert.IssuedAt.Format("January 2, 2006"),
		ID:         cert.ID,
	}
	if view.SelfIssued {
		view.TypeLabel = "Certificate of Appreciation"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, view); err != nil {
		h.logger.Error("rendering certificate template", slog.String("error", err.Error()))
	}
}
