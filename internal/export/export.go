// Package export renders trajectories and fleet statistics as downloadable
// documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	fleet "fleet-monitor/internal/fleet/domain"
)

const timeLayout = time.RFC3339

// BuildTrajectoryCSV renders one vehicle's trajectory as CSV.
func BuildTrajectoryCSV(vehicle *fleet.Vehicle, positions []fleet.Position) ([]byte, error) {
	if vehicle == nil {
		return nil, fleet.ErrNilVehicle
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"vehicle_id", "username", "latitude", "longitude", "captured_at"}); err != nil {
		return nil, err
	}
	for _, pos := range positions {
		record := []string{
			strconv.FormatInt(vehicle.ID, 10),
			vehicle.DisplayName,
			formatCoordinate(pos.Latitude),
			formatCoordinate(pos.Longitude),
			pos.CapturedAt.UTC().Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildTrajectoryXLSX renders one vehicle's trajectory as a workbook with a
// summary sheet and a positions sheet.
func BuildTrajectoryXLSX(vehicle *fleet.Vehicle, positions []fleet.Position) ([]byte, error) {
	if vehicle == nil {
		return nil, fleet.ErrNilVehicle
	}
	f := excelize.NewFile()
	summarySheet := "summary"
	positionsSheet := "positions"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(positionsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Vehicle Trajectory")
	_ = f.SetCellValue(summarySheet, "A3", "Vehicle ID")
	_ = f.SetCellValue(summarySheet, "B3", vehicle.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Username")
	_ = f.SetCellValue(summarySheet, "B4", vehicle.DisplayName)
	_ = f.SetCellValue(summarySheet, "A5", "Positions")
	_ = f.SetCellValue(summarySheet, "B5", len(positions))
	if len(positions) > 0 {
		_ = f.SetCellValue(summarySheet, "A6", "First")
		_ = f.SetCellValue(summarySheet, "B6", positions[0].CapturedAt.UTC().Format(timeLayout))
		_ = f.SetCellValue(summarySheet, "A7", "Last")
		_ = f.SetCellValue(summarySheet, "B7", positions[len(positions)-1].CapturedAt.UTC().Format(timeLayout))
	}

	_ = f.SetCellValue(positionsSheet, "A1", "Latitude")
	_ = f.SetCellValue(positionsSheet, "B1", "Longitude")
	_ = f.SetCellValue(positionsSheet, "C1", "Captured At")
	for i, pos := range positions {
		row := i + 2
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("A%d", row), pos.Latitude)
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("B%d", row), pos.Longitude)
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("C%d", row), pos.CapturedAt.UTC().Format(timeLayout))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildFleetStatsPDF renders the per-vehicle aggregates as a PDF table.
func BuildFleetStatsPDF(stats []fleet.VehicleStats, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Fleet Statistics")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(timeLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Vehicles: %d", len(stats)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Username", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Positions", "1", 0, "C", false, 0, "")
	pdf.CellFormat(47, 6, "First", "1", 0, "C", false, 0, "")
	pdf.CellFormat(47, 6, "Last", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range stats {
		pdf.CellFormat(20, 6, strconv.FormatInt(row.VehicleID, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, row.DisplayName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, strconv.FormatInt(row.Count, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(47, 6, formatOptionalTime(row.FirstCapturedAt), "1", 0, "C", false, 0, "")
		pdf.CellFormat(47, 6, formatOptionalTime(row.LastCapturedAt), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(timeLayout)
}
