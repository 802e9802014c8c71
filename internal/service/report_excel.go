package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

func countRows(section string, counts []Count) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{section, c.Label, c.Count})
	}
	return rows
}

// Export writes every report into one workbook, one sheet per entity kind.
func (s *ReportService) Export(ctx context.Context, w io.Writer) error {
	citizens, err := s.Citizens(ctx)
	if err != nil {
		return err
	}
	cards, err := s.Cards(ctx)
	if err != nil {
		return err
	}
	institutions, err := s.Institutions(ctx)
	if err != nil {
		return err
	}

	countHeader := []string{"Report", "Category", "Count"}
	sheets := []sheet{
		{name: "Citizens", header: countHeader},
		{name: "Cards", header: countHeader},
		{name: "Institutions", header: countHeader},
		{name: "Expiring Licenses", header: []string{"ID", "Name", "License Number", "License Expiry"}},
	}
	for _, part := range []struct {
		section string
		counts  []Count
	}{
		{"Insurance Type", citizens.ByInsuranceType},
		{"Gender", citizens.ByGender},
		{"Card Status", citizens.ByCardStatus},
		{"Age Group", citizens.ByAgeGroup},
	} {
		sheets[0].rows = append(sheets[0].rows, countRows(part.section, part.counts)...)
	}
	for _, part := range []struct {
		section string
		counts  []Count
	}{
		{"Status", cards.ByStatus},
		{"Insurance Type", cards.ByInsuranceType},
		{"Issued Per Month", cards.IssuanceTrend},
		{"Usage By Institution Type", cards.UsageByInstitutionType},
	} {
		sheets[1].rows = append(sheets[1].rows, countRows(part.section, part.counts)...)
	}
	sheets[2].rows = append(countRows("Type", institutions.ByType), countRows("Status", institutions.ByStatus)...)
	for _, e := range institutions.ExpiringSoon {
		sheets[3].rows = append(sheets[3].rows, []any{e.ID, e.Name, e.LicenseNumber, formatDay(e.LicenseExpiry)})
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sh := range sheets {
		index, err := f.NewSheet(sh.name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	for col, title := range sh.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sh.name, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sh.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sh.name, colName, colName, 24); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	for r, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sh.name, err)
		}
	}
	return nil
}
