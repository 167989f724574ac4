package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AllCategories disables the category filter, like an empty category.
const AllCategories = "all"

// Filter is the search box and category selector state of a record list.
type Filter struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

// Row is one rendered record.
type Row struct {
	Values   map[string]string `json:"values"`
	Category string            `json:"category,omitempty"`
	Status   string            `json:"status,omitempty"`
	Badge    string            `json:"badge,omitempty"`
}

// View is a dataset rendered under a filter.
type View struct {
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	Columns    []Field           `json:"columns"`
	Rows       []Row             `json:"rows"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
	Totals     map[string]string `json:"totals,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Filter     Filter            `json:"filter"`
}

// View applies the filter and formats the matching records.
func (d *Dataset) View(f Filter) View {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.TrimSpace(f.Category)

	view := View{
		Name:       d.Name,
		Title:      d.Title,
		Columns:    d.Fields,
		Rows:       make([]Row, 0, len(d.rows)),
		Total:      len(d.rows),
		Categories: d.Categories(),
		Filter:     f,
	}

	sums := make(map[string]decimal.Decimal)
	for _, rec := range d.rows {
		if !d.matches(rec, f) {
			continue
		}
		view.Rows = append(view.Rows, d.render(rec))
		for key, amount := range rec.money {
			sums[key] = sums[key].Add(amount)
		}
	}
	view.Count = len(view.Rows)

	for _, field := range d.Fields {
		if field.Kind != KindMoney {
			continue
		}
		if view.Totals == nil {
			view.Totals = make(map[string]string)
		}
		view.Totals[field.Key] = formatMoney(sums[field.Key])
	}
	return view
}

func (d *Dataset) matches(rec record, f Filter) bool {
	if d.Category != "" && f.Category != "" && !strings.EqualFold(f.Category, AllCategories) {
		if !strings.EqualFold(rec.values[d.Category], f.Category) {
			return false
		}
	}
	if f.Query == "" {
		return true
	}

	needle := strings.ToLower(f.Query)
	keys := d.Search
	if len(keys) == 0 {
		keys = make([]string, 0, len(d.Fields))
		for _, field := range d.Fields {
			keys = append(keys, field.Key)
		}
	}
	for _, key := range keys {
		if strings.Contains(strings.ToLower(rec.values[key]), needle) {
			return true
		}
	}
	return false
}

func (d *Dataset) render(rec record) Row {
	row := Row{Values: make(map[string]string, len(d.Fields))}
	for _, field := range d.Fields {
		raw := rec.values[field.Key]
		switch field.Kind {
		case KindMoney:
			if amount, ok := rec.money[field.Key]; ok {
				row.Values[field.Key] = formatMoney(amount)
				continue
			}
		case KindPercent:
			if raw != "" && !strings.HasSuffix(raw, "%") {
				raw += "%"
			}
		}
		row.Values[field.Key] = raw
	}
	if d.Category != "" {
		row.Category = rec.values[d.Category]
	}
	if d.Status != "" {
		row.Status = rec.values[d.Status]
		row.Badge = d.BadgeColor(row.Status)
	}
	return row
}

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount as $1,234,567.89.
func formatMoney(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	return sign + moneyPrinter.Sprintf("$%.2f", amount.Round(2).InexactFloat64())
}
