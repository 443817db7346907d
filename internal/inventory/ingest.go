package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"rental-inventory-backend/internal/model"
	"rental-inventory-backend/internal/store"
)

// Safety-cap errors. These are circuit breakers against runaway pagination,
// not business limits; hitting one fails the whole request because partial
// inventory would cause false "available" assignments.
var (
	ErrCatalogTooLarge     = errors.New("device catalog too large")
	ErrTooManyReservations = errors.New("too many reservations in window")
)

// Catalog is the full device inventory for a request, indexed by category.
type Catalog struct {
	Devices []model.Device

	tagsByCategory map[string][]string
	allTags        []string
}

// TagsFor returns the tags of one category in ascending order.
func (c *Catalog) TagsFor(category string) []string {
	return c.tagsByCategory[category]
}

// Tags returns every tag in the catalog in ascending order.
func (c *Catalog) Tags() []string {
	return c.allTags
}

func indexCatalog(devices []model.Device) *Catalog {
	c := &Catalog{
		Devices:        devices,
		tagsByCategory: make(map[string][]string),
	}
	for _, d := range devices {
		c.tagsByCategory[d.Category] = append(c.tagsByCategory[d.Category], d.Tag)
		c.allTags = append(c.allTags, d.Tag)
	}
	// Fixed tag order makes first-fit reproducible regardless of how the
	// store happened to return pages.
	for _, tags := range c.tagsByCategory {
		sort.Strings(tags)
	}
	sort.Strings(c.allTags)
	return c
}

// LoadCatalog fetches the complete device set in fixed-size pages. The last
// page is recognized by returning fewer rows than the page size.
func LoadCatalog(ctx context.Context, st store.Store, categories []string, pageSize, maxDevices int) (*Catalog, error) {
	var devices []model.Device
	for offset := 0; ; offset += pageSize {
		page, err := st.ListDevicesPage(ctx, categories, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("device catalog ingestion failed: %w", err)
		}
		devices = append(devices, page...)
		if len(devices) > maxDevices {
			return nil, fmt.Errorf("%w: more than %d devices", ErrCatalogTooLarge, maxDevices)
		}
		if len(page) < pageSize {
			break
		}
	}
	return indexCatalog(devices), nil
}

// LoadReservations fetches every reservation that could possibly occupy a
// device during the window: those whose date range overlaps it, plus every
// still-open reservation regardless of its nominal dates, because an
// overdue, unreturned reservation still holds its device.
func LoadReservations(ctx context.Context, st store.Store, w Window, categories []string, pageSize, maxRows int) ([]model.Reservation, error) {
	var reservations []model.Reservation
	for offset := 0; ; offset += pageSize {
		page, err := st.ListReservationsPage(ctx, w.Start, w.End, categories, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("reservation ingestion failed: %w", err)
		}
		reservations = append(reservations, page...)
		if len(reservations) > maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTooManyReservations, maxRows)
		}
		if len(page) < pageSize {
			break
		}
	}
	return reservations, nil
}
