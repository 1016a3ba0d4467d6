package repository

import (
	"errors"
	"fmt"

	"ride-booking/internal/models"
)

var (
	ErrDuplicateVehicleID = errors.New("duplicate vehicle ID")
	ErrVehicleNotFound    = errors.New("vehicle not found")
)

// FleetRegistry is the ordered, read-only list of vehicles fixed at startup.
// It has no writers, so concurrent reads need no locking.
type FleetRegistry struct {
	vehicles []models.Vehicle
	index    map[string]int
}

func NewFleetRegistry(vehicles []models.Vehicle) (*FleetRegistry, error) {
	r := &FleetRegistry{
		vehicles: make([]models.Vehicle, len(vehicles)),
		index:    make(map[string]int, len(vehicles)),
	}
	copy(r.vehicles, vehicles)

	for i, v := range r.vehicles {
		if _, exists := r.index[v.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVehicleID, v.ID)
		}
		r.index[v.ID] = i
	}

	return r, nil
}

// DefaultFleet returns the vehicles the server starts with.
func DefaultFleet() []models.Vehicle {
	return []models.Vehicle{
		{ID: "EV-001", Driver: "Alice", Location: models.Location{Lat: 12.9716, Lng: 77.5946}, BatteryLevel: 85, Status: models.StatusAvailable},
		{ID: "EV-002", Driver: "Bob", Location: models.Location{Lat: 12.9250, Lng: 77.5890}, BatteryLevel: 20, Status: models.StatusAvailable},
		{ID: "EV-003", Driver: "Charlie", Location: models.Location{Lat: 12.9500, Lng: 77.6000}, BatteryLevel: 90, Status: models.StatusBusy},
	}
}

// FindAll returns a copy of the registry in insertion order.
func (r *FleetRegistry) FindAll() []models.Vehicle {
	out := make([]models.Vehicle, len(r.vehicles))
	copy(out, r.vehicles)
	return out
}

func (r *FleetRegistry) FindByID(id string) (*models.Vehicle, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	v := r.vehicles[i]
	return &v, nil
}

// FindFirst returns the first vehicle in registry order that satisfies match.
func (r *FleetRegistry) FindFirst(match func(models.Vehicle) bool) (*models.Vehicle, bool) {
	for _, v := range r.vehicles {
		if match(v) {
			found := v
			return &found, true
		}
	}
	return nil, false
}

func (r *FleetRegistry) Count() int {
	return len(r.vehicles)
}
