package services

import (
	"errors"

	"ride-booking/internal/models"
	"ride-booking/internal/repository"
)

const (
	// MinBatteryLevel is exclusive: a vehicle needs strictly more charge.
	MinBatteryLevel = 30
	// DefaultETA is reported for every match; no routing is done.
	DefaultETA = 5
)

var ErrNoCarsAvailable = errors.New("no cars available")

type BookingService struct {
	fleet *repository.FleetRegistry
}

func NewBookingService(fleet *repository.FleetRegistry) *BookingService {
	return &BookingService{fleet: fleet}
}

// Eligible reports whether a vehicle can take a booking.
func Eligible(v models.Vehicle) bool {
	return v.Status == models.StatusAvailable && v.BatteryLevel > MinBatteryLevel
}

// BookRide picks the first eligible vehicle in registry order. The request is
// accepted but does not influence the choice, and the vehicle is not marked
// busy, so identical calls keep returning the same car.
func (s *BookingService) BookRide(req *models.BookingRequest) (*models.DriverDetails, error) {
	vehicle, ok := s.fleet.FindFirst(Eligible)
	if !ok {
		return nil, ErrNoCarsAvailable
	}

	return &models.DriverDetails{
		CarID:        vehicle.ID,
		Driver:       vehicle.Driver,
		ETA:          DefaultETA,
		BatteryLevel: vehicle.BatteryLevel,
	}, nil
}

// FleetStatus summarizes the registry for dashboards.
func (s *BookingService) FleetStatus() *models.FleetStatus {
	vehicles := s.fleet.FindAll()
	status := &models.FleetStatus{
		Total:    len(vehicles),
		Vehicles: vehicles,
	}

	for _, v := range vehicles {
		switch v.Status {
		case models.StatusAvailable:
			status.Available++
		case models.StatusBusy:
			status.Busy++
		}
		if Eligible(v) {
			status.Eligible++
		}
	}

	return status
}

func (s *BookingService) GetVehicle(id string) (*models.Vehicle, error) {
	return s.fleet.FindByID(id)
}
