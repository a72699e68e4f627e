package models

import "strings"

// Connection status values reported by the monitoring API.
const (
	ConnectionOnline  = "online"
	ConnectionOffline = "offline"
	ConnectionUnknown = "unknown"
)

// Patient is a monitored patient as delivered by the data provider.
// Every field except PatientID is optional.
type Patient struct {
	PatientID         Text    `json:"patient_id"`
	Name              Text    `json:"name"`
	Gender            Text    `json:"gender"`
	Age               Reading `json:"age"`
	MedicalConditions Text    `json:"medical_conditions"`
	ConnectionStatus  Text    `json:"connection_status"`
	HeartRate         Reading `json:"heart_rate"`
	OxygenLevel       Reading `json:"oxygen_level"`
	LastReading       Text    `json:"last_reading"`
}

// Connection normalizes ConnectionStatus to online, offline or unknown.
func (p Patient) Connection() string {
	switch strings.ToLower(strings.TrimSpace(string(p.ConnectionStatus))) {
	case ConnectionOnline:
		return ConnectionOnline
	case ConnectionOffline:
		return ConnectionOffline
	default:
		return ConnectionUnknown
	}
}

// IsOnline reports whether the patient's device is connected.
func (p Patient) IsOnline() bool {
	return p.Connection() == ConnectionOnline
}
