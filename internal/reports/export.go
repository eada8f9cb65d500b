package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetIncome  = "DRP"
	sheetBalance = "Balanço"
)

// ExportFileName returns the default export file name for kind and ext, e.g.
// balanco_20250131_153000.xlsx.
func ExportFileName(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", kind, now.Format("20060102_150405"), ext)
}

// ExportMarkdown writes the Markdown rendering of report to path.
func (r *Renderer) ExportMarkdown(path string, report any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Markdown(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportXLSX writes report to a workbook at path with one sheet per statement.
func ExportXLSX(path string, report any) error {
	f := excelize.NewFile()
	defer f.Close()

	w, err := newSheetWriter(f)
	if err != nil {
		return err
	}

	var sheets []string
	switch v := report.(type) {
	case BalanceSheet:
		sheets = []string{sheetBalance}
		err = w.balance(v)
	case IncomeStatement:
		sheets = []string{sheetIncome}
		err = w.income(v)
	case FinancialStatements:
		sheets = []string{sheetIncome, sheetBalance}
		if err = w.income(v.Income); err == nil {
			err = w.balance(v.Balance)
		}
	default:
		return fmt.Errorf("cannot export %T", report)
	}
	if err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheets[0]); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

type sheetWriter struct {
	f      *excelize.File
	header int
	number int
	bold   int
	sheet  string
	row    int
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("creating number style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("creating total style: %w", err)
	}
	return &sheetWriter{f: f, header: header, number: number, bold: bold}, nil
}

func (w *sheetWriter) start(name, title string) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.sheet = name
	_ = w.f.SetColWidth(name, "A", "A", 40)
	_ = w.f.SetColWidth(name, "B", "B", 18)
	if err := w.f.SetCellValue(name, "A1", title); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(name, "A1", "B1", w.header); err != nil {
		return err
	}
	w.row = 3
	return nil
}

func (w *sheetWriter) line(label string, amount decimal.Decimal, style int) error {
	a, _ := excelize.CoordinatesToCellName(1, w.row)
	b, _ := excelize.CoordinatesToCellName(2, w.row)
	w.row++
	if err := w.f.SetCellValue(w.sheet, a, label); err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, b, amount.InexactFloat64()); err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, b, b, style)
}

func (w *sheetWriter) heading(label string) error {
	a, _ := excelize.CoordinatesToCellName(1, w.row)
	b, _ := excelize.CoordinatesToCellName(2, w.row)
	w.row++
	if err := w.f.SetCellValue(w.sheet, a, label); err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, a, b, w.header)
}

func (w *sheetWriter) section(s Section) error {
	if err := w.heading(s.Title); err != nil {
		return err
	}
	for _, l := range s.Lines {
		if err := w.line(l.Account.Name, l.Amount, w.number); err != nil {
			return err
		}
	}
	if err := w.line("Total "+s.Title, s.Total, w.bold); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *sheetWriter) balance(b BalanceSheet) error {
	if err := w.start(sheetBalance, "Balanço Patrimonial em "+b.AsOf.String()); err != nil {
		return err
	}
	for _, s := range []Section{b.CurrentAssets, b.FixedAssets} {
		if err := w.section(s); err != nil {
			return err
		}
	}
	if err := w.line("Total do Ativo", b.TotalAssets, w.bold); err != nil {
		return err
	}
	w.row++
	for _, s := range []Section{b.CurrentLiabilities, b.NonCurrentLiabilities, b.Equity} {
		if err := w.section(s); err != nil {
			return err
		}
	}
	if err := w.line("Lucro/Prejuízo do período", b.NetIncome, w.number); err != nil {
		return err
	}
	return w.line("Total do Passivo e Patrimônio Líquido", b.TotalLiabilitiesAndEquity, w.bold)
}

func (w *sheetWriter) income(is IncomeStatement) error {
	if err := w.start(sheetIncome, "Demonstração do Resultado: "+is.Period.String()); err != nil {
		return err
	}
	if err := w.section(is.Revenue); err != nil {
		return err
	}
	if err := w.section(is.Expenses); err != nil {
		return err
	}
	if err := w.line("Resultado Líquido", is.NetIncome, w.bold); err != nil {
		return err
	}
	if m, ok := is.NetMargin(); ok {
		return w.line("Margem líquida (%)", m, w.number)
	}
	return nil
}
