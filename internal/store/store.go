package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rental-inventory-backend/internal/model"
)

// ErrAlreadyAssigned is returned by AssignTag when another writer persisted a
// tag for the reservation first. The caller's decision is stale and must be
// treated as advisory only.
var ErrAlreadyAssigned = errors.New("reservation already has an assigned tag")

// Store defines the interface for all database operations the pipeline and
// handlers need. Page reads use a fixed ordering so that repeated pagination
// over a stable table yields every row exactly once.
type Store interface {
	DB() *gorm.DB

	// ListDevicesPage returns one page of devices ordered by tag. An empty
	// categories slice means no category filter.
	ListDevicesPage(ctx context.Context, categories []string, offset, limit int) ([]model.Device, error)

	// ListReservationsPage returns one page of reservations that either
	// overlap [start, end] or are still open (status != returned), ordered
	// by pickup date then id.
	ListReservationsPage(ctx context.Context, start, end time.Time, categories []string, offset, limit int) ([]model.Reservation, error)

	CreateDevice(ctx context.Context, d *model.Device) error
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservationStatus(ctx context.Context, id, status string) error

	// AssignTag persists a newly decided tag. It only succeeds while the
	// reservation is still untagged; a concurrent assignment surfaces as
	// ErrAlreadyAssigned.
	AssignTag(ctx context.Context, id, tag string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) ListDevicesPage(ctx context.Context, categories []string, offset, limit int) ([]model.Device, error) {
	q := s.db.WithContext(ctx).Model(&model.Device{}).Order("tag ASC")
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}

	var devices []model.Device
	if err := q.Offset(offset).Limit(limit).Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices at offset %d: %w", offset, err)
	}
	return devices, nil
}

func (s *gormStore) ListReservationsPage(ctx context.Context, start, end time.Time, categories []string, offset, limit int) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("(pickup_date <= ? AND return_date >= ?) OR status <> ?",
			end, start, model.ReservationReturned).
		Order("pickup_date ASC, id ASC")
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}

	var reservations []model.Reservation
	if err := q.Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations at offset %d: %w", offset, err)
	}
	return reservations, nil
}

func (s *gormStore) CreateDevice(ctx context.Context, d *model.Device) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormStore) UpdateReservationStatus(ctx context.Context, id, status string) error {
	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) AssignTag(ctx context.Context, id, tag string) error {
	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND (assigned_tag IS NULL OR assigned_tag = '')", id).
		Update("assigned_tag", tag)
	if res.Error != nil {
		return fmt.Errorf("failed to persist tag for reservation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyAssigned
	}
	return nil
}
