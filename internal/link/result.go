package link

// Result is the structured outcome every link operation returns to its
// caller. Executors never propagate errors; failures come back as
// Success=false with a descriptive message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// VehicleInfo is the serialised form of a vehicle record
type VehicleInfo struct {
	SystemID    uint8  `json:"system_id"`
	ComponentID uint8  `json:"component_id"`
	VehicleType string `json:"vehicle_type"`
}
