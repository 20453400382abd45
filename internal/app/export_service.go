package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"healthvault/internal/domain"
)

// ExportService renders a user's vault as an Excel workbook.
type ExportService struct {
	bmi      *BmiService
	vaccines *VaccineService
	appts    *AppointmentService
}

// NewExportService creates an ExportService over the other services.
func NewExportService(bmi *BmiService, vaccines *VaccineService, appts *AppointmentService) *ExportService {
	return &ExportService{bmi: bmi, vaccines: vaccines, appts: appts}
}

const (
	bmiSheet     = "BMI History"
	vaccineSheet = "Vaccines"
	apptSheet    = "Appointments"
)

// Workbook builds the .xlsx file in memory and returns its bytes.
func (s *ExportService) Workbook(ctx context.Context, userID int64) ([]byte, error) {
	entries, err := s.bmi.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	vaccines, err := s.vaccines.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeBmiSheet(f, entries); err != nil {
		return nil, err
	}
	if err := writeVaccineSheet(f, vaccines); err != nil {
		return nil, err
	}
	if err := writeAppointmentSheet(f, appts); err != nil {
		return nil, err
	}

	if idx, err := f.GetSheetIndex(bmiSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBmiSheet(f *excelize.File, entries []domain.BmiEntry) error {
	if _, err := f.NewSheet(bmiSheet); err != nil {
		return err
	}
	if err := writeHeader(f, bmiSheet, []string{"Date", "Height (cm)", "Weight (kg)", "BMI", "Category", "Notes"}); err != nil {
		return err
	}
	for i, e := range entries {
		row := i + 2
		bmi := domain.ComputeBMI(e.HeightCm, e.WeightKg)
		cells := []any{e.Date, e.HeightCm, e.WeightKg, bmi, domain.ClassifyBMI(bmi).Label, e.Notes}
		if err := writeRow(f, bmiSheet, row, cells); err != nil {
			return err
		}
	}
	f.SetColWidth(bmiSheet, "A", "A", 12)
	f.SetColWidth(bmiSheet, "E", "F", 20)
	return nil
}

func writeVaccineSheet(f *excelize.File, vaccines []domain.VaccineRecord) error {
	if _, err := f.NewSheet(vaccineSheet); err != nil {
		return err
	}
	if err := writeHeader(f, vaccineSheet, []string{"Name", "Dose / Company", "Offset (months)", "Due", "Administered", "Administered On", "Custom"}); err != nil {
		return err
	}
	for i, v := range vaccines {
		row := i + 2
		cells := []any{v.Name, v.Company, v.OffsetMonths, v.DueDate, yesNo(v.Administered), v.AdministeredDate, yesNo(v.IsCustom)}
		if err := writeRow(f, vaccineSheet, row, cells); err != nil {
			return err
		}
	}
	f.SetColWidth(vaccineSheet, "A", "B", 24)
	return nil
}

func writeAppointmentSheet(f *excelize.File, appts []domain.Appointment) error {
	if _, err := f.NewSheet(apptSheet); err != nil {
		return err
	}
	if err := writeHeader(f, apptSheet, []string{"Date", "Time", "Place", "Disease", "Completed"}); err != nil {
		return err
	}
	for i, a := range appts {
		row := i + 2
		cells := []any{a.Date, a.Time, a.Place, a.Disease, yesNo(a.Completed)}
		if err := writeRow(f, apptSheet, row, cells); err != nil {
			return err
		}
	}
	f.SetColWidth(apptSheet, "C", "D", 24)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
