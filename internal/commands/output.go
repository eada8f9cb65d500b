package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func parseID(s, what string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, model.Invalid(what, "%q is not a valid id", s)
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Decimal{}, model.Invalid("amount", "%q is not a number", s)
	}
	return d, nil
}

// parseDate reads a date in any common ordering; empty means today.
func parseDate(s string) (date.Date, error) {
	if strings.TrimSpace(s) == "" {
		return date.Today(), nil
	}
	d, err := date.ParseFlexible(s)
	if err != nil {
		return date.Date{}, model.Invalid("date", "%v", err)
	}
	return d, nil
}
