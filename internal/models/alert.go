package models

// Alert is an alert raised for a patient. PatientID and PatientName are a
// denormalized weak reference; alerts outlive the patient they point to.
type Alert struct {
	AlertID       Text `json:"alert_id"`
	PatientID     Text `json:"patient_id"`
	PatientName   Text `json:"patient_name"`
	SeverityLevel Text `json:"severity_level"`
	Resolved      Flag `json:"resolved"`
	IssueDetected Text `json:"issue_detected"`
	Message       Text `json:"message"`
	Datetime      Text `json:"datetime"`
}
