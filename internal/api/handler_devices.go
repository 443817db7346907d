package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rental-inventory-backend/internal/model"
)

// pageParams reads rent-desk style page/size query params with sane bounds.
func pageParams(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "100"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 1000 {
		size = 100
	}
	return (page - 1) * size, size
}

// ListDevices handles GET /api/devices.
func (h *Handler) ListDevices(c *gin.Context) {
	offset, limit := pageParams(c)
	devices, err := h.store.ListDevicesPage(c.Request.Context(), c.QueryArray("category"), offset, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}

type createDeviceRequest struct {
	Tag      string `json:"tag" binding:"required"`
	Category string `json:"category" binding:"required"`
	Status   string `json:"status"`
}

// CreateDevice handles POST /api/devices.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status == "" {
		req.Status = model.DeviceAvailable
	}
	device := model.Device{
		Tag:      req.Tag,
		Category: req.Category,
		Status:   req.Status,
	}
	if err := h.store.CreateDevice(c.Request.Context(), &device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, device)
}
