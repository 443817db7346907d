package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"rental-inventory-backend/internal/inventory"
	"rental-inventory-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	svc     *inventory.Service
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *inventory.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		svc:     svc,
		webpush: webpushOptions,
	}
}
