package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
)

var daySheetColumns = []string{
	"Time", "End", "Pet", "Breed", "Client", "Phone",
	"Services", "Duration (min)", "Confirmed", "No-show", "Paid", "Amount", "Notes",
}

// DaySheet renders one groomer day as an Excel workbook: a single sheet
// named after the date, one row per appointment in start-time order.
func DaySheet(w io.Writer, date string, rows []database.DaySheetRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := date
	// Excel caps sheet names at 31 chars.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	f.SetSheetName("Sheet1", sheet)

	if err := writeHeader(f, sheet); err != nil {
		return err
	}

	for i, r := range rows {
		values := []any{
			r.Appointment.Time,
			r.Appointment.EndTime(),
			r.PetName,
			r.Breed,
			r.ClientName,
			r.ClientPhone,
			strings.Join(r.Appointment.Services, ", "),
			r.Appointment.DurationMin,
			yesNo(r.Appointment.Confirmed),
			yesNo(r.Appointment.NoShow),
			yesNo(r.Appointment.Paid),
			float64(r.Appointment.AmountCents) / 100,
			r.Appointment.Notes,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	return f.Write(w)
}

func writeHeader(f *excelize.File, sheet string) error {
	for i, col := range daySheetColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(daySheetColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, style)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
