package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
	"github.com/tahsin/project-nourish/internal/service"
)

// RegistryHandler serves the admin CRUD surface: donor register, food
// items, storage facilities and distribution events/details. The route
// table restricts every route here to the admin role.
type RegistryHandler struct {
	svc    *service.RegistryService
	logger *slog.Logger
}

func NewRegistryHandler(svc *service.RegistryService, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{svc: svc, logger: logger}
}

func listOptions(r *http.Request) repository.ListOptions {
	return repository.ListOptions{Limit: parseLimit(r), Offset: parseOffset(r)}
}

// --- donor register: /api/donors ---

func (h *RegistryHandler) HandleListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.svc.ListDonors(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donors)
}

func (h *RegistryHandler) HandleGetDonor(w http.ResponseWriter, r *http.Request) {
	donor, err := h.svc.GetDonor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

func (h *RegistryHandler) HandleCreateDonor(w http.ResponseWriter, r *http.Request) {
	var donor model.Donor
	if err := decodeJSON(r, &donor); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CreateDonor(r.Context(), &donor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, donor)
}

func (h *RegistryHandler) HandleUpdateDonor(w http.ResponseWriter, r *http.Request) {
	var donor model.Donor
	if err := decodeJSON(r, &donor); err != nil {
		writeError(w, err)
		return
	}
	donor.ID = chi.URLParam(r, "id")
	if err := h.svc.UpdateDonor(r.Context(), &donor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

func (h *RegistryHandler) HandleDeleteDonor(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDonor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- food items: /api/food-items ---

func (h *RegistryHandler) HandleListFoodItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListFoodItems(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RegistryHandler) HandleGetFoodItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetFoodItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *RegistryHandler) HandleCreateFoodItem(w http.ResponseWriter, r *http.Request) {
	var item model.FoodItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CreateFoodItem(r.Context(), &item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *RegistryHandler) HandleUpdateFoodItem(w http.ResponseWriter, r *http.Request) {
	var item model.FoodItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, err)
		return
	}
	item.ID = chi.URLParam(r, "id")
	if err := h.svc.UpdateFoodItem(r.Context(), &item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *RegistryHandler) HandleDeleteFoodItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFoodItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- storage facilities: /api/storage ---

func (h *RegistryHandler) HandleListStorage(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.svc.ListStorageFacilities(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (h *RegistryHandler) HandleGetStorage(w http.ResponseWriter, r *http.Request) {
	facility, err := h.svc.GetStorageFacility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

func (h *RegistryHandler) HandleCreateStorage(w http.ResponseWriter, r *http.Request) {
	var facility model.StorageFacility
	if err := decodeJSON(r, &facility); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CreateStorageFacility(r.Context(), &facility); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, facility)
}

func (h *RegistryHandler) HandleUpdateStorage(w http.ResponseWriter, r *http.Request) {
	var facility model.StorageFacility
	if err := decodeJSON(r, &facility); err != nil {
		writeError(w, err)
		return
	}
	facility.ID = chi.URLParam(r, "id")
	if err := h.svc.UpdateStorageFacility(r.Context(), &facility); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

func (h *RegistryHandler) HandleDeleteStorage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStorageFacility(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- distribution events: /api/distribution-events ---

func (h *RegistryHandler) HandleListDistributionEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListDistributionEvents(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *RegistryHandler) HandleGetDistributionEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetDistributionEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *RegistryHandler) HandleCreateDistributionEvent(w http.ResponseWriter, r *http.Request) {
	var event model.DistributionEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CreateDistributionEvent(r.Context(), &event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *RegistryHandler) HandleUpdateDistributionEvent(w http.ResponseWriter, r *http.Request) {
	var event model.DistributionEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, err)
		return
	}
	event.ID = chi.URLParam(r, "id")
	if err := h.svc.UpdateDistributionEvent(r.Context(), &event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *RegistryHandler) HandleDeleteDistributionEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDistributionEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- distribution details: /api/distribution-details ---

func (h *RegistryHandler) HandleListDistributionRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListDistributionRecords(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RegistryHandler) HandleGetDistributionDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetDistributionDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RegistryHandler) HandleCreateDistributionDetail(w http.ResponseWriter, r *http.Request) {
	var detail model.DistributionDetail
	if err := decodeJSON(r, &detail); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CreateDistributionDetail(r.Context(), &detail); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *RegistryHandler) HandleUpdateDistributionDetail(w http.ResponseWriter, r *http.Request) {
	var detail model.DistributionDetail
	if err := decodeJSON(r, &detail); err != nil {
		writeError(w, err)
		return
	}
	detail.ID = chi.URLParam(r, "id")
	if err := h.svc.UpdateDistributionDetail(r.Context(), &detail); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RegistryHandler) HandleDeleteDistributionDetail(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDistributionDetail(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
