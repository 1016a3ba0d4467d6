package handlers

import (
	"errors"
	"net/http"

	"ride-booking/internal/repository"
	"ride-booking/internal/services"
	"ride-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	bookingService *services.BookingService
}

func NewFleetHandler(bookingService *services.BookingService) *FleetHandler {
	return &FleetHandler{bookingService: bookingService}
}

// GetFleetStatus lists every vehicle with summary counts
func (h *FleetHandler) GetFleetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.bookingService.FleetStatus())
}

// GetVehicle returns a single vehicle by ID
func (h *FleetHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.bookingService.GetVehicle(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Vehicle not found", nil)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicle", err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}
