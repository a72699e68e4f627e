package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mandaraliyanage/ECDWA-Medisis/internal/classify"
	"github.com/mandaraliyanage/ECDWA-Medisis/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names
const (
	PatientsSheet = "Patients"
	AlertsSheet   = "Alerts"
)

type column[T any] struct {
	header string
	width  float64
	value  func(T) any
}

var patientColumns = []column[models.Patient]{
	{"Patient ID", 14, func(p models.Patient) any { return p.PatientID.String() }},
	{"Name", 24, func(p models.Patient) any { return p.Name.String() }},
	{"Gender", 10, func(p models.Patient) any { return p.Gender.String() }},
	{"Age", 8, func(p models.Patient) any { return readingValue(p.Age) }},
	{"Medical Conditions", 30, func(p models.Patient) any { return p.MedicalConditions.String() }},
	{"Status", 12, func(p models.Patient) any { return p.Connection() }},
	{"Heart Rate", 12, func(p models.Patient) any { return readingValue(p.HeartRate) }},
	{"HR Category", 12, func(p models.Patient) any {
		return string(classify.ClassifyVital(classify.VitalHeartRate, p.HeartRate))
	}},
	{"SpO2", 10, func(p models.Patient) any { return readingValue(p.OxygenLevel) }},
	{"SpO2 Category", 14, func(p models.Patient) any { return string(classify.ClassifyVital(classify.VitalOxygen, p.OxygenLevel)) }},
	{"Acuity", 10, func(p models.Patient) any { return string(classify.PatientAcuity(p)) }},
	{"Last Reading", 24, func(p models.Patient) any { return p.LastReading.String() }},
}

var alertColumns = []column[models.Alert]{
	{"Alert ID", 14, func(a models.Alert) any { return a.AlertID.String() }},
	{"Patient ID", 14, func(a models.Alert) any { return a.PatientID.String() }},
	{"Patient", 24, func(a models.Alert) any { return a.PatientName.String() }},
	{"Severity", 12, func(a models.Alert) any { return a.SeverityLevel.String() }},
	{"Level", 10, func(a models.Alert) any { return string(classify.ClassifySeverity(a.SeverityLevel.String())) }},
	{"Status", 12, func(a models.Alert) any {
		if a.Resolved {
			return "Resolved"
		}
		return "Unresolved"
	}},
	{"Issue", 24, func(a models.Alert) any { return a.IssueDetected.String() }},
	{"Message", 40, func(a models.Alert) any { return a.Message.String() }},
	{"Datetime", 24, func(a models.Alert) any { return a.Datetime.String() }},
}

// PatientsWorkbook renders patient rows, in the given order, as an XLSX file
func PatientsWorkbook(patients []models.Patient) ([]byte, error) {
	return writeWorkbook(PatientsSheet, patientColumns, patients)
}

// AlertsWorkbook renders alert rows, in the given order, as an XLSX file
func AlertsWorkbook(alerts []models.Alert) ([]byte, error) {
	return writeWorkbook(AlertsSheet, alertColumns, alerts)
}

func readingValue(r models.Reading) any {
	if v, ok := r.Get(); ok {
		return v
	}
	return nil
}

func writeWorkbook[T any](sheetName string, columns []column[T], rows []T) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, c.header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, c.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			v := c.value(row)
			if v == nil || v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Exporter writes the query views of each snapshot into a directory
type Exporter struct {
	dir    string
	logger *zap.Logger
}

// NewExporter creates an exporter; an empty dir disables it
func NewExporter(dir string, logger *zap.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Enabled reports whether a target directory is configured
func (e *Exporter) Enabled() bool {
	return e != nil && e.dir != ""
}

const (
	PatientsFile = "patients-latest.xlsx"
	AlertsFile   = "alerts-latest.xlsx"
)

// Export replaces PatientsFile and AlertsFile in the export dir with the
// given views and returns their paths. Each file is swapped in whole via
// rename, so readers never see a partial workbook.
func (e *Exporter) Export(snapshotID string, patients []models.Patient, alerts []models.Alert) ([]string, error) {
	if !e.Enabled() {
		return nil, nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	pb, err := PatientsWorkbook(patients)
	if err != nil {
		return nil, fmt.Errorf("failed to build patients workbook: %w", err)
	}
	ab, err := AlertsWorkbook(alerts)
	if err != nil {
		return nil, fmt.Errorf("failed to build alerts workbook: %w", err)
	}

	paths := []string{
		filepath.Join(e.dir, PatientsFile),
		filepath.Join(e.dir, AlertsFile),
	}
	for i, data := range [][]byte{pb, ab} {
		if err := replaceFile(paths[i], data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", paths[i], err)
		}
	}

	e.logger.Info("Exported snapshot views",
		zap.String("snapshot_id", snapshotID),
		zap.Int("patients", len(patients)),
		zap.Int("alerts", len(alerts)),
	)
	return paths, nil
}

func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
