package models

const (
	StatusAvailable = "available"
	StatusBusy      = "busy"
)

// Vehicle is one entry of the fleet registry. Status is free-form; only
// StatusAvailable is meaningful to matching.
type Vehicle struct {
	ID           string   `json:"id"`
	Driver       string   `json:"driver"`
	Location     Location `json:"location"`
	BatteryLevel int      `json:"batteryLevel"`
	Status       string   `json:"status"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
