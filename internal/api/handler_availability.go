package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-inventory-backend/internal/inventory"
	"rental-inventory-backend/internal/model"
)

// timeSlotResponse flattens a TimeSlot for the wire: plain ISO date plus the
// reservations occupying that day, each carrying its (possibly freshly
// decided) assigned tag.
type timeSlotResponse struct {
	Date         string              `json:"date"`
	Reservations []model.Reservation `json:"reservations"`
}

type availabilityResponse struct {
	Devices   []string             `json:"devices"`
	TimeSlots []timeSlotResponse   `json:"time_slots"`
	Decisions []inventory.Decision `json:"decisions"`
}

// GetAvailability handles GET /api/availability?start=...&end=...&category=...
// It runs the whole allocation pipeline for the window and returns the
// day-indexed occupancy grid.
func (h *Handler) GetAvailability(c *gin.Context) {
	q := inventory.Query{
		Start:      c.Query("start"),
		End:        c.Query("end"),
		Categories: c.QueryArray("category"),
		Persist:    c.DefaultQuery("persist", "true") != "false",
	}

	result, err := h.svc.Availability(c.Request.Context(), q)
	if err != nil {
		status, kind := classifyPipelineError(err)
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	slots := make([]timeSlotResponse, 0, len(result.Slots))
	for _, s := range result.Slots {
		slots = append(slots, timeSlotResponse{
			Date:         s.Date.Format(inventory.DateLayout),
			Reservations: s.Reservations,
		})
	}

	c.JSON(http.StatusOK, availabilityResponse{
		Devices:   result.Devices,
		TimeSlots: slots,
		Decisions: result.Decisions,
	})
}

func classifyPipelineError(err error) (int, string) {
	switch {
	case errors.Is(err, inventory.ErrInvalidWindow):
		return http.StatusBadRequest, "invalid_window"
	case errors.Is(err, inventory.ErrCatalogTooLarge),
		errors.Is(err, inventory.ErrTooManyReservations):
		return http.StatusServiceUnavailable, "safety_cap_exceeded"
	default:
		return http.StatusBadGateway, "ingestion_failure"
	}
}
