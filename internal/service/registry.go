package service

import (
	"context"
	"log/slog"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// RegistryService covers the admin-managed registers: donors, food
// items, storage facilities and distribution events/details. All methods
// are reached only through admin-gated routes; validation and
// sanitization happen here, authorization in the route table.
type RegistryService struct {
	donors    repository.DonorRepository
	foodItems repository.FoodItemRepository
	storage   repository.StorageRepository
	events    repository.DistributionEventRepository
	details   repository.DistributionDetailRepository
	logger    *slog.Logger
}

func NewRegistryService(
	donors repository.DonorRepository,
	foodItems repository.FoodItemRepository,
	storage repository.StorageRepository,
	events repository.DistributionEventRepository,
	details repository.DistributionDetailRepository,
	logger *slog.Logger,
) *RegistryService {
	return &RegistryService{
		donors:    donors,
		foodItems: foodItems,
		storage:   storage,
		events:    events,
		details:   details,
		logger:    logger,
	}
}

func clampList(opts repository.ListOptions) repository.ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// --- donor register ---

func (s *RegistryService) CreateDonor(ctx context.Context, donor *model.Donor) error {
	donor.DonorName = sanitize(donor.DonorName)
	donor.DonorType = sanitize(donor.DonorType)
	donor.ContactNumber = sanitize(donor.ContactNumber)
	if donor.DonorName == "" {
		return apperror.ValidationFailed("donorName", "donor name is required")
	}
	if err := s.donors.CreateDonor(ctx, donor); err != nil {
		return err
	}
	s.logger.Info("donor registered", slog.String("donorID", donor.ID))
	return nil
}

func (s *RegistryService) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	return s.donors.GetDonorByID(ctx, id)
}

func (s *RegistryService) ListDonors(ctx context.Context, opts repository.ListOptions) ([]model.Donor, error) {
	return s.donors.ListDonors(ctx, clampList(opts))
}

func (s *RegistryService) UpdateDonor(ctx context.Context, donor *model.Donor) error {
	donor.DonorName = sanitize(donor.DonorName)
	donor.DonorType = sanitize(donor.DonorType)
	donor.ContactNumber = sanitize(donor.ContactNumber)
	if donor.DonorName == "" {
		return apperror.ValidationFailed("donorName", "donor name is required")
	}
	return s.donors.UpdateDonor(ctx, donor)
}

func (s *RegistryService) DeleteDonor(ctx context.Context, id string) error {
	return s.donors.DeleteDonor(ctx, id)
}

// --- food items ---

func (s *RegistryService) CreateFoodItem(ctx context.Context, item *model.FoodItem) error {
	item.ItemName = sanitize(item.ItemName)
	item.Unit = sanitize(item.Unit)
	if item.ItemName == "" {
		return apperror.ValidationFailed("itemName", "item name is required")
	}
	if item.Quantity < 0 {
		return apperror.ValidationFailed("quantity", "quantity must not be negative")
	}
	if err := s.foodItems.CreateFoodItem(ctx, item); err != nil {
		return err
	}
	s.logger.Info("food item added", slog.String("foodItemID", item.ID))
	return nil
}

func (s *RegistryService) GetFoodItem(ctx context.Context, id string) (*model.FoodItem, error) {
	return s.foodItems.GetFoodItemByID(ctx, id)
}

func (s *RegistryService) ListFoodItems(ctx context.Context, opts repository.ListOptions) ([]model.FoodItem, error) {
	return s.foodItems.ListFoodItems(ctx, clampList(opts))
}

func (s *RegistryService) UpdateFoodItem(ctx context.Context, item *model.FoodItem) error {
	item.ItemName = sanitize(item.ItemName)
	item.Unit = sanitize(item.Unit)
	if item.ItemName == "" {
		return apperror.ValidationFailed("itemName", "item name is required")
	}
	if item.Quantity < 0 {
		return apperror.ValidationFailed("quantity", "quantity must not be negative")
	}
	return s.foodItems.UpdateFoodItem(ctx, item)
}

func (s *RegistryService) DeleteFoodItem(ctx context.Context, id string) error {
	return s.foodItems.DeleteFoodItem(ctx, id)
}

// --- storage facilities ---

func (s *RegistryService) CreateStorageFacility(ctx context.Context, f *model.StorageFacility) error {
	f.Location = sanitize(f.Location)
	if f.Location == "" {
		return apperror.ValidationFailed("location", "location is required")
	}
	if f.Capacity < 0 || f.CurrentStock < 0 {
		return apperror.ValidationFailed("capacity", "capacity and stock must not be negative")
	}
	if f.CurrentStock > f.Capacity {
		return apperror.ValidationFailed("currentStock", "stock cannot exceed capacity")
	}
	if err := s.storage.CreateStorageFacility(ctx, f); err != nil {
		return err
	}
	s.logger.Info("storage facility added", slog.String("facilityID", f.ID))
	return nil
}

func (s *RegistryService) GetStorageFacility(ctx context.Context, id string) (*model.StorageFacility, error) {
	return s.storage.GetStorageFacilityByID(ctx, id)
}

func (s *RegistryService) ListStorageFacilities(ctx context.Context, opts repository.ListOptions) ([]model.StorageFacility, error) {
	return s.storage.ListStorageFacilities(ctx, clampList(opts))
}

func (s *RegistryService) UpdateStorageFacility(ctx context.Context, f *model.StorageFacility) error {
	f.Location = sanitize(f.Location)
	if f.Location == "" {
		return apperror.ValidationFailed("location", "location is required")
	}
	if f.Capacity < 0 || f.CurrentStock < 0 {
		return apperror.ValidationFailed("capacity", "capacity and stock must not be negative")
	}
	if f.CurrentStock > f.Capacity {
		return apperror.ValidationFailed("currentStock", "stock cannot exceed capacity")
	}
	return s.storage.UpdateStorageFacility(ctx, f)
}

func (s *RegistryService) DeleteStorageFacility(ctx context.Context, id string) error {
	return s.storage.DeleteStorageFacility(ctx, id)
}

// --- distribution events ---

func (s *RegistryService) CreateDistributionEvent(ctx context.Context, e *model.DistributionEvent) error {
	e.Location = sanitize(e.Location)
	e.OrganizedBy = sanitize(e.OrganizedBy)
	if e.Location == "" {
		return apperror.ValidationFailed("location", "location is required")
	}
	if e.EventDate.IsZero() {
		return apperror.ValidationFailed("eventDate", "event date is required")
	}
	if err := s.events.CreateDistributionEvent(ctx, e); err != nil {
		return err
	}
	s.logger.Info("distribution event created", slog.String("eventID", e.ID))
	return nil
}

func (s *RegistryService) GetDistributionEvent(ctx context.Context, id string) (*model.DistributionEvent, error) {
	return s.events.GetDistributionEventByID(ctx, id)
}

func (s *RegistryService) ListDistributionEvents(ctx context.Context, opts repository.ListOptions) ([]model.DistributionEvent, error) {
	return s.events.ListDistributionEvents(ctx, clampList(opts))
}

func (s *RegistryService) UpdateDistributionEvent(ctx context.Context, e *model.DistributionEvent) error {
	e.Location = sanitize(e.Location)
	e.OrganizedBy = sanitize(e.OrganizedBy)
	if e.Location == "" {
		return apperror.ValidationFailed("location", "location is required")
	}
	return s.events.UpdateDistributionEvent(ctx, e)
}

func (s *RegistryService) DeleteDistributionEvent(ctx context.Context, id string) error {
	return s.events.DeleteDistributionEvent(ctx, id)
}

// --- distribution details ---

// CreateDistributionDetail checks the referenced event and food item
// exist before inserting, so the caller gets a NotFound instead of a
// bare foreign-key failure.
func (s *RegistryService) CreateDistributionDetail(ctx context.Context, d *model.DistributionDetail) error {
	if d.QuantityDistributed <= 0 {
		return apperror.ValidationFailed("quantityDistributed", "quantity must be positive")
	}
	if _, err := s.events.GetDistributionEventByID(ctx, d.EventID); err != nil {
		return err
	}
	if _, err := s.foodItems.GetFoodItemByID(ctx, d.FoodID); err != nil {
		return err
	}
	if err := s.details.CreateDistributionDetail(ctx, d); err != nil {
		return err
	}
	s.logger.Info("distribution detail recorded",
		slog.String("detailID", d.ID),
		slog.String("eventID", d.EventID),
	)
	return nil
}

func (s *RegistryService) GetDistributionDetail(ctx context.Context, id string) (*model.DistributionDetail, error) {
	return s.details.GetDistributionDetailByID(ctx, id)
}

func (s *RegistryService) ListDistributionRecords(ctx context.Context, opts repository.ListOptions) ([]model.DistributionRecord, error) {
	return s.details.ListDistributionRecords(ctx, clampList(opts))
}

func (s *RegistryService) UpdateDistributionDetail(ctx context.Context, d *model.DistributionDetail) error {
	if d.QuantityDistributed <= 0 {
		return apperror.ValidationFailed("quantityDistributed", "quantity must be positive")
	}
	return s.details.UpdateDistributionDetail(ctx, d)
}

func (s *RegistryService) DeleteDistributionDetail(ctx context.Context, id string) error {
	return s.details.DeleteDistributionDetail(ctx, id)
}
