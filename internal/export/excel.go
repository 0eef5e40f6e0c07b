package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jojam/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes schedule and receipt workbooks under the exports path.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// ReceiptNumber formats a reservation id as a printable receipt number.
func ReceiptNumber(reservationID int64) string {
	return fmt.Sprintf("%s%06d", models.ReceiptPrefix, reservationID)
}

// ScheduleWorkbook writes a day-by-day overview of the booked slots and
// returns the file path.
func (e *Exporter) ScheduleWorkbook(startDate, endDate time.Time, daily map[string][]*models.Reservation) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Schedule"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateCols := e.writeDateHeaders(f, sheetName, startDate, endDate)
	_ = f.SetCellValue(sheetName, "A3", "Studio")

	labelStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A3", "A3", labelStyle)

	e.writeReservationCells(f, sheetName, daily, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 28)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format(models.DateLayout),
		endDate.Format(models.DateLayout))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("schedule workbook created")
	return filePath, nil
}

func (e *Exporter) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("02.01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[currentDate.Format(models.DateLayout)] = col

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateCols
}

func (e *Exporter) writeReservationCells(f *excelize.File, sheetName string, daily map[string][]*models.Reservation, dateCols map[string]int) {
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})

	for dateKey, reservations := range daily {
		col, exists := dateCols[dateKey]
		if !exists {
			continue
		}

		var cellValue string
		for _, r := range reservations {
			if r.Status == models.StatusDeclined {
				continue
			}
			cellValue += fmt.Sprintf("%s %s-%s %s (%s)\n",
				statusIcon(r.Status), r.StartTime, r.EndTime, r.BandName, r.Type)
		}
		if cellValue == "" {
			cellValue = "Free"
		}

		cell, _ := excelize.CoordinatesToCellName(col, 3)
		_ = f.SetCellValue(sheetName, cell, cellValue)
		_ = f.SetCellStyle(sheetName, cell, cell, cellStyle)
	}
}

// ReceiptWorkbook writes a receipt for an accepted reservation and returns
// the file path.
func (e *Exporter) ReceiptWorkbook(r *models.Reservation, user *models.User) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Receipt"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	number := ReceiptNumber(r.ID)
	_ = f.SetCellValue(sheetName, "A1", "JOJAM STUDIOS")
	_ = f.SetCellValue(sheetName, "A2", "Receipt "+number)

	rows := [][2]interface{}{
		{"Band", r.BandName},
		{"Booked by", user.Username},
		{"Session type", r.Type},
		{"Date", r.Date.Format(models.DateLayout)},
		{"Time", fmt.Sprintf("%s - %s", r.StartTime, r.EndTime)},
		{"Members", r.Members},
		{"Total", fmt.Sprintf("%.2f", r.TotalPrice)},
		{"Status", r.Status},
	}
	if r.ApprovedAt != nil {
		rows = append(rows, [2]interface{}{"Approved at", r.ApprovedAt.Format("2006-01-02 15:04")})
	}

	for i, pair := range rows {
		rowNum := i + 4
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), pair[0])
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), pair[1])
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "B", "B", 30)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("receipt_%s.xlsx", number)
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Str("receipt", number).Msg("receipt workbook created")
	return filePath, nil
}

func statusIcon(status string) string {
	switch status {
	case models.StatusAccepted:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusDeclined:
		return "❌"
	default:
		return "❓"
	}
}
