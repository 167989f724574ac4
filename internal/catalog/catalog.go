// Package catalog holds the fixture records shown on portal dashboards and renders them through
// one generic record-list view: a field schema, a search and category filter, and a status badge
// color table per dataset.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fastygo/staff-portal/domain"
)

//go:embed fixtures/*.yaml
var fixtures embed.FS

// FieldKind controls how a record value is formatted.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindMoney   FieldKind = "money"
	KindNumber  FieldKind = "number"
	KindPercent FieldKind = "percent"
	KindDate    FieldKind = "date"
)

// DefaultBadge is used for statuses missing from a dataset's badge table.
const DefaultBadge = "gray"

type Field struct {
	Key   string    `yaml:"key" json:"key"`
	Label string    `yaml:"label" json:"label"`
	Kind  FieldKind `yaml:"kind" json:"kind"`
}

// Dataset is one fixture document.
type Dataset struct {
	Name     string                   `yaml:"name"`
	Title    string                   `yaml:"title"`
	Fields   []Field                  `yaml:"fields"`
	Search   []string                 `yaml:"search"`
	Category string                   `yaml:"category"`
	Status   string                   `yaml:"status"`
	Badges   map[string]string        `yaml:"badges"`
	Records  []map[string]interface{} `yaml:"records"`

	rows []record
}

type record struct {
	values map[string]string
	money  map[string]decimal.Decimal
}

// Catalog indexes datasets by name.
type Catalog struct {
	datasets map[string]*Dataset
}

// Load parses every embedded fixture document.
func Load() (*Catalog, error) {
	return LoadFS(fixtures, "fixtures")
}

// LoadFS parses every *.yaml document under dir.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	c := &Catalog{datasets: make(map[string]*Dataset, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var ds Dataset
		if err := yaml.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := ds.prepare(); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if _, dup := c.datasets[ds.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate dataset %q", entry.Name(), ds.Name)
		}
		c.datasets[ds.Name] = &ds
	}
	return c, nil
}

// MustLoad panics if the embedded fixtures are malformed.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the named dataset.
func (c *Catalog) Get(name string) (*Dataset, error) {
	if ds, ok := c.datasets[name]; ok {
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrDatasetNotFound, name)
}

// Names lists dataset names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.datasets))
	for name := range c.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dataset) prepare() error {
	if d.Name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("dataset %q declares no fields", d.Name)
	}

	known := make(map[string]FieldKind, len(d.Fields))
	for i := range d.Fields {
		if d.Fields[i].Kind == "" {
			d.Fields[i].Kind = KindText
		}
		known[d.Fields[i].Key] = d.Fields[i].Kind
	}
	for _, key := range append(append([]string{}, d.Search...), d.Category, d.Status) {
		if key == "" {
			continue
		}
		if _, ok := known[key]; !ok {
			return fmt.Errorf("dataset %q references undeclared field %q", d.Name, key)
		}
	}

	d.rows = make([]record, 0, len(d.Records))
	for i, raw := range d.Records {
		rec := record{values: make(map[string]string, len(d.Fields))}
		for _, f := range d.Fields {
			value := stringify(raw[f.Key])
			if f.Kind == KindMoney && value != "" {
				amount, err := decimal.NewFromString(value)
				if err != nil {
					return fmt.Errorf("dataset %q record %d: field %q: %w", d.Name, i, f.Key, err)
				}
				if rec.money == nil {
					rec.money = make(map[string]decimal.Decimal)
				}
				rec.money[f.Key] = amount
			}
			rec.values[f.Key] = value
		}
		d.rows = append(d.rows, rec)
	}
	return nil
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// BadgeColor looks up the badge color of a status, case-insensitively.
func (d *Dataset) BadgeColor(status string) string {
	if color, ok := d.Badges[status]; ok {
		return color
	}
	for key, color := range d.Badges {
		if strings.EqualFold(key, status) {
			return color
		}
	}
	return DefaultBadge
}

// Categories returns the distinct category values in first-appearance order.
func (d *Dataset) Categories() []string {
	if d.Category == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range d.rows {
		value := rec.values[d.Category]
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprint(val)
	}
}
