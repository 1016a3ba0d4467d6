package handlers

import (
	"errors"
	"net/http"

	"ride-booking/internal/api/middleware"
	"ride-booking/internal/models"
	"ride-booking/internal/services"
	"ride-booking/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

const (
	msgDriverFound     = "Driver Found"
	msgNoCarsAvailable = "No cars available"
)

type BookingHandler struct {
	bookingService *services.BookingService
	validator      *validator.Validate
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator.New(),
	}
}

// BookRide assigns the first eligible vehicle to the caller
func (h *BookingHandler) BookRide(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	entry := log.WithFields(log.Fields{
		"requestId": c.GetString(middleware.RequestIDKey),
		"route":     c.FullPath(),
	})
	entry.WithFields(log.Fields{
		"startLocation": req.StartLocation,
		"destination":   req.Destination,
	}).Info("Booking request")
	// Contact details stay out of info-level logs
	entry.WithFields(log.Fields{
		"clientName":  req.ClientName,
		"clientPhone": req.ClientPhone,
	}).Debug("Booking client")

	details, err := h.bookingService.BookRide(&req)
	if err != nil {
		if errors.Is(err, services.ErrNoCarsAvailable) {
			c.JSON(http.StatusNotFound, models.BookingResponse{Message: msgNoCarsAvailable})
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to book ride", err)
		return
	}

	c.JSON(http.StatusOK, models.BookingResponse{
		Message:       msgDriverFound,
		DriverDetails: details,
	})
}
