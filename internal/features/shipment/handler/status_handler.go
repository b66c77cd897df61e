package handler

import (
	"time"

	"shipment-status/internal/features/shipment/service"

	"github.com/gofiber/fiber/v2"
)

// StatusHandler handles HTTP requests for shipment status enrichment.
type StatusHandler struct {
	enricher *service.Enricher
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(enricher *service.Enricher) *StatusHandler {
	return &StatusHandler{
		enricher: enricher,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// GetShipmentStatus godoc
// @Summary Get the enriched status for a shipment
// @Description Fetches the carrier payload for a tracking number and returns the normalized record, timing metrics, indicators, and classification
// @Tags shipments
// @Produce json
// @Param number path string true "Tracking Number"
// @Param carrier query string false "Carrier code (e.g., FDXE)"
// @Success 200 {object} service.Enrichment
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /shipments/{number}/status [get]
func (h *StatusHandler) GetShipmentStatus(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")
	if trackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking number is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	row := service.Row{
		TrackingNumber: trackingNumber,
		CarrierCode:    c.Query("carrier"),
	}

	enrichment, err := h.enricher.Enrich(c.Context(), row, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Message: "failed to fetch carrier payload",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(enrichment)
}
