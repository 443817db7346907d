package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rental-inventory-backend/internal/inventory"
	"rental-inventory-backend/internal/model"
	"rental-inventory-backend/internal/store"
)

// ListReservations handles GET /api/reservations. The window parameters are
// the same as the availability endpoint's; the response is the raw row set
// without any allocation run.
func (h *Handler) ListReservations(c *gin.Context) {
	w, err := inventory.ParseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_window"})
		return
	}

	offset, limit := pageParams(c)
	reservations, err := h.store.ListReservationsPage(c.Request.Context(), w.Start, w.End, c.QueryArray("category"), offset, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

type createReservationRequest struct {
	Category   string `json:"category" binding:"required"`
	RenterID   string `json:"renterId"`
	PickupDate string `json:"pickupDate" binding:"required"`
	PickupTime string `json:"pickupTime"`
	ReturnDate string `json:"returnDate" binding:"required"`
	ReturnTime string `json:"returnTime"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := inventory.ParseWindow(req.PickupDate, req.ReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_window"})
		return
	}

	reservation := model.Reservation{
		ID:         uuid.NewString(),
		Category:   req.Category,
		RenterID:   req.RenterID,
		PickupDate: w.Start,
		PickupTime: req.PickupTime,
		ReturnDate: w.End,
		ReturnTime: req.ReturnTime,
		Status:     model.ReservationPending,
	}
	if err := h.store.CreateReservation(c.Request.Context(), &reservation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

type updateReservationRequest struct {
	Status      *string `json:"status"`
	AssignedTag *string `json:"assignedTag"`
}

// UpdateReservation handles PATCH /api/reservations/:id for status changes
// and manual tag assignments. A manual assignment goes through the same
// guarded write as the engine's persisted decisions, so two staff actions
// cannot both claim the reservation.
func (h *Handler) UpdateReservation(c *gin.Context) {
	id := c.Param("id")

	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == nil && req.AssignedTag == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if req.Status != nil {
		if !validReservationStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + *req.Status})
			return
		}
		if err := h.store.UpdateReservationStatus(c.Request.Context(), id, *req.Status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	if req.AssignedTag != nil {
		if err := h.store.AssignTag(c.Request.Context(), id, *req.AssignedTag); err != nil {
			if errors.Is(err, store.ErrAlreadyAssigned) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"updatedAt": time.Now().UTC()})
}

func validReservationStatus(s string) bool {
	switch s {
	case model.ReservationPending, model.ReservationPickedUp,
		model.ReservationNotPickedUp, model.ReservationReturned:
		return true
	}
	return false
}
