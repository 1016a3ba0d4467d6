package models

// BookingRequest is the body of POST /api/book-ride. None of its fields take
// part in vehicle selection.
type BookingRequest struct {
	ClientName    string `json:"clientName" validate:"required,min=1,max=100"`
	ClientPhone   string `json:"clientPhone,omitempty" validate:"omitempty,min=7,max=20"`
	StartLocation string `json:"startLocation" validate:"required,min=1,max=200"`
	Destination   string `json:"destination" validate:"required,min=1,max=200"`
}

type DriverDetails struct {
	CarID        string `json:"carId"`
	Driver       string `json:"driver"`
	ETA          int    `json:"eta"`
	BatteryLevel int    `json:"batteryLevel"`
}

type BookingResponse struct {
	Message       string         `json:"message"`
	DriverDetails *DriverDetails `json:"driverDetails,omitempty"`
}

// FleetStatus is a read-only snapshot of the registry.
type FleetStatus struct {
	Total     int       `json:"total"`
	Available int       `json:"available"`
	Busy      int       `json:"busy"`
	Eligible  int       `json:"eligible"`
	Vehicles  []Vehicle `json:"vehicles"`
}
