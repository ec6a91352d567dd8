package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteWorkbook writes a single XLSX workbook with one sheet per artifact.
func (r *Report) WriteWorkbook(path string) error {
	f := xlsx.NewFile()

	if err := addSheet(f, "Samples", sampleColumns, len(r.Samples), func(i int) []string {
		return buildSampleRow(r.Samples[i])
	}); err != nil {
		return err
	}

	if err := addSheet(f, "Class Statistics", statsColumns, len(r.Stats.Classes), func(i int) []string {
		return buildStatsRow(r.Stats.Classes[i], r.Stats.HasBaseline)
	}); err != nil {
		return err
	}

	if len(r.Scenarios) > 0 {
		if err := addSheet(f, "Scenarios", scenarioColumns, len(r.Scenarios), func(i int) []string {
			return buildScenarioRow(r.Scenarios[i])
		}); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header []string, n int, rowFn func(int) []string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", name)
	}

	writeRow(sheet, header)
	for i := 0; i < n; i++ {
		writeRow(sheet, rowFn(i))
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
