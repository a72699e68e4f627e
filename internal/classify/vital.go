package classify

import "github.com/mandaraliyanage/ECDWA-Medisis/internal/models"

// Category is the per-reading classification of a vital sign.
type Category string

const (
	CategoryOK   Category = "ok"
	CategoryWarn Category = "warn"
	CategoryCrit Category = "crit"
)

// VitalKind selects the thresholds used by ClassifyVital.
type VitalKind string

const (
	VitalHeartRate VitalKind = "hr"
	VitalOxygen    VitalKind = "spo2"
)

// HeartRate classifies a heart rate in bpm. Critical bounds win over warn bounds.
func HeartRate(v float64) Category {
	switch {
	case v < 50 || v > 120:
		return CategoryCrit
	case v < 60 || v > 100:
		return CategoryWarn
	default:
		return CategoryOK
	}
}

// Oxygen classifies an oxygen saturation percentage.
func Oxygen(v float64) Category {
	switch {
	case v < 90:
		return CategoryCrit
	case v < 95:
		return CategoryWarn
	default:
		return CategoryOK
	}
}

// ClassifyVital classifies an optional reading. Absent readings and unknown
// kinds are ok, which is how badges render an unset value.
func ClassifyVital(kind VitalKind, r models.Reading) Category {
	v, ok := r.Get()
	if !ok {
		return CategoryOK
	}
	switch kind {
	case VitalHeartRate:
		return HeartRate(v)
	case VitalOxygen:
		return Oxygen(v)
	default:
		return CategoryOK
	}
}

// IsCritical is the overall patient predicate used for critical counts:
// heart rate below 50 or above 120, or oxygen below 90. Missing vitals never count.
func IsCritical(p models.Patient) bool {
	if hr, ok := p.HeartRate.Get(); ok && (hr < 50 || hr > 120) {
		return true
	}
	if ox, ok := p.OxygenLevel.Get(); ok && ox < 90 {
		return true
	}
	return false
}

// Acuity is the colored stripe shown next to a patient card.
type Acuity string

const (
	AcuityCritical Acuity = "critical"
	AcuityOK       Acuity = "ok"
	AcuityWarn     Acuity = "warn"
)

// PatientAcuity returns critical for critical patients, ok for other online
// patients and warn for everyone else.
func PatientAcuity(p models.Patient) Acuity {
	if IsCritical(p) {
		return AcuityCritical
	}
	if p.IsOnline() {
		return AcuityOK
	}
	return AcuityWarn
}
