package services

import (
	"fmt"

	"case_radar_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// BuildCaseActivityReport builds an xlsx workbook with every act observed on
// a case, including classification and deadline columns, newest first.
func BuildCaseActivityReport(db *gorm.DB, caseID string) (*excelize.File, error) {
	var kase models.Case
	if err := db.First(&kase, "id = ?", caseID).Error; err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}

	var acts []models.CaseAct
	if err := db.Where("case_id = ?", caseID).
		Order("occurred_on DESC").
		Find(&acts).Error; err != nil {
		return nil, fmt.Errorf("failed to load acts: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Actuaciones"
	f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Actividad procesal - Caso %s", kase.CaseNumber))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	headers := []string{"Fecha", "Tipo", "Anotación", "Clasificación", "Confianza", "Inicio término", "Fin término", "Fuente"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, act := range acts {
		row := i + 4
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), act.OccurredOn.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), act.Type)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), act.Annotation)
		if act.Classification != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *act.Classification)
		}
		if act.ClassificationConfidence != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), *act.ClassificationConfidence)
		}
		if act.DeadlineStart != nil {
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), act.DeadlineStart.Format("2006-01-02"))
		}
		if act.DeadlineEnd != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), act.DeadlineEnd.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), act.Source)
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 40)
	f.SetColWidth(sheet, "D", "H", 15)

	return f, nil
}
