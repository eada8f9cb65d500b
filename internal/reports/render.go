package reports

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "BRL"

// FormatMoney renders amount in the currency's display format, e.g. R$1.234,56.
// Unknown codes fall back to a plain fixed-point figure followed by the code.
func FormatMoney(amount decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Renderer turns statements into Markdown and optionally styles it for the terminal.
type Renderer struct {
	currency string
	tmpl     *template.Template
}

// NewRenderer creates a Renderer formatting amounts in currency.
func NewRenderer(currency string) *Renderer {
	r := &Renderer{currency: currency}
	r.tmpl = template.Must(template.New("reports").Funcs(template.FuncMap{
		"money":  func(d decimal.Decimal) string { return FormatMoney(d, r.currency) },
		"pct":    func(d decimal.Decimal) string { return d.StringFixed(2) + "%" },
		"margin": func(s IncomeStatement) *decimal.Decimal {
			if m, ok := s.NetMargin(); ok {
				return &m
			}
			return nil
		},
	}).Parse(markdownTemplates))
	return r
}

const markdownTemplates = `
{{- define "section" -}}
### {{ .Title }}

{{ if .Lines -}}
| Conta | Valor |
|---|---:|
{{ range .Lines -}}
| {{ .Account.Name }} | {{ money .Amount }} |
{{ end }}
{{ else -}}
_Nenhum lançamento._

{{ end -}}
**Total {{ .Title }}: {{ money .Total }}**

{{ end -}}

{{- define "balance" -}}
## Balanço Patrimonial em {{ .AsOf }}

{{ template "section" .CurrentAssets -}}
{{ template "section" .FixedAssets -}}
**Total do Ativo: {{ money .TotalAssets }}**

{{ template "section" .CurrentLiabilities -}}
{{ template "section" .NonCurrentLiabilities -}}
{{ template "section" .Equity -}}
Lucro/Prejuízo do período: {{ money .NetIncome }}

**Total do Passivo e Patrimônio Líquido: {{ money .TotalLiabilitiesAndEquity }}**

{{ if .Balanced -}}
Balanço fechado.
{{- else -}}
**Balanço não fecha: diferença de {{ money .Difference }}.**
{{- end }}
{{ end -}}

{{- define "income" -}}
## Demonstração do Resultado: {{ .Period }}

{{ template "section" .Revenue -}}
{{ template "section" .Expenses -}}
**Resultado Líquido: {{ money .NetIncome }}**
{{ with margin . }}
Margem líquida: {{ pct . }}
{{ end -}}
{{ end -}}
`

// Markdown renders a BalanceSheet, an IncomeStatement or FinancialStatements.
func (r *Renderer) Markdown(w io.Writer, report any) error {
	var err error
	switch v := report.(type) {
	case BalanceSheet:
		err = r.tmpl.ExecuteTemplate(w, "balance", v)
	case IncomeStatement:
		err = r.execIncome(w, v)
	case FinancialStatements:
		if err = r.execIncome(w, v.Income); err == nil {
			_, _ = io.WriteString(w, "\n")
			err = r.tmpl.ExecuteTemplate(w, "balance", v.Balance)
		}
	default:
		return fmt.Errorf("cannot render %T", report)
	}
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func (r *Renderer) execIncome(w io.Writer, is IncomeStatement) error {
	return r.tmpl.ExecuteTemplate(w, "income", is)
}

// Pretty renders report as styled terminal output wrapped at width columns.
func (r *Renderer) Pretty(w io.Writer, report any, width int) error {
	var buf bytes.Buffer
	if err := r.Markdown(&buf, report); err != nil {
		return err
	}
	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := tr.Render(buf.String())
	if err != nil {
		return fmt.Errorf("styling report: %w", err)
	}
	_, err = io.WriteString(w, strings.TrimLeft(out, "\n"))
	return err
}
