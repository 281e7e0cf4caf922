package domain

import (
	"encoding/json"
	"time"
)

// Accelerometer holds a single three-axis accelerometer sample.
type Accelerometer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// GPS holds the position the sample was taken at.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AgentData is a raw reading reported by a field agent.
type AgentData struct {
	UserID        int           `json:"user_id"`
	Accelerometer Accelerometer `json:"accelerometer"`
	GPS           GPS           `json:"gps"`
	Timestamp     time.Time     `json:"timestamp"`
}

// ProcessedAgentData is an agent reading classified by the edge with a road state.
type ProcessedAgentData struct {
	RoadState string    `json:"road_state"`
	AgentData AgentData `json:"agent_data"`
}

// JSON returns the wire representation of the record.
func (p ProcessedAgentData) JSON() ([]byte, error) {
	return json.Marshal(p)
}
