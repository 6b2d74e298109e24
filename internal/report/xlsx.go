package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// Sheet names of the export workbook.
const (
	SheetAssessments   = "Assessments"
	SheetHealthSignals = "Health Signals"
	SheetAreas         = "Areas"
)

var areaHeader = []string{
	"Area ID",
	"Area Name",
	"Respiratory Elevated",
	"Respiratory Normal",
	"Gastrointestinal Elevated",
	"Gastrointestinal Normal",
	"Skin Elevated",
	"Skin Normal",
	"Total Signals",
	"Has Risk",
}

// WorkbookInput is the data an XLSX export is built from.
type WorkbookInput struct {
	Assessments []model.Assessment
	Signals     []model.HealthSignal
	Areas       []model.AreaSummary
}

// WriteWorkbook writes an XLSX workbook with one sheet per record set,
// using the same column order as the CSV exports. Notes are stored as
// plain cell text.
func WriteWorkbook(w io.Writer, in WorkbookInput) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SheetAssessments)
	if err != nil {
		return eris.Wrap(err, "xlsx: add assessments sheet")
	}
	addHeader(sheet, AssessmentHeader)
	for _, a := range in.Assessments {
		row := sheet.AddRow()
		row.AddCell().SetInt64(a.ID)
		row.AddCell().SetFloat(a.Latitude)
		row.AddCell().SetFloat(a.Longitude)
		row.AddCell().SetString(string(a.SiteType))
		row.AddCell().SetString(string(a.BuildingAge))
		row.AddCell().SetInt(a.AsbestosRisk)
		row.AddCell().SetInt(a.WaterRisk)
		row.AddCell().SetInt(a.OverallRisk)
		row.AddCell().SetString(string(a.Priority))
		row.AddCell().SetString(a.Notes)
		row.AddCell().SetString(a.CreatedAt)
	}

	sheet, err = f.AddSheet(SheetHealthSignals)
	if err != nil {
		return eris.Wrap(err, "xlsx: add signals sheet")
	}
	addHeader(sheet, SignalHeader)
	for _, s := range in.Signals {
		row := sheet.AddRow()
		row.AddCell().SetInt64(s.ID)
		row.AddCell().SetString(areaName(s))
		row.AddCell().SetString(string(s.SignalType))
		row.AddCell().SetString(string(s.SignalLevel))
		addOptionalFloat(row, s.Latitude)
		addOptionalFloat(row, s.Longitude)
		row.AddCell().SetString(s.Notes)
		row.AddCell().SetString(s.SignalDate)
		row.AddCell().SetString(s.CreatedAt)
	}

	sheet, err = f.AddSheet(SheetAreas)
	if err != nil {
		return eris.Wrap(err, "xlsx: add areas sheet")
	}
	addHeader(sheet, areaHeader)
	for _, a := range in.Areas {
		row := sheet.AddRow()
		row.AddCell().SetString(a.AreaID)
		row.AddCell().SetString(a.AreaName)
		for _, t := range model.SignalTypes {
			c := a.Counts(t)
			row.AddCell().SetInt(c.Elevated)
			row.AddCell().SetInt(c.Normal)
		}
		row.AddCell().SetInt(a.TotalSignals)
		row.AddCell().SetBool(a.HasRisk)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, header []string) {
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
}

func addOptionalFloat(row *xlsx.Row, f *float64) {
	cell := row.AddCell()
	if f != nil {
		cell.SetFloat(*f)
	}
}
