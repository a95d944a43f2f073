package heightmap

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Volcano       = "volcano"
	HighIsland    = "high_island"
	LowIsland     = "low_island"
	Continents    = "continents"
	Archipelago   = "archipelago"
	Atoll         = "atoll"
	Mediterranean = "mediterranean"
	Peninsula     = "peninsula"
	Pangaea       = "pangaea"
	Isthmus       = "isthmus"
)

// Template is a named, ordered list of operator steps.
type Template struct {
	Name  string
	Steps []Step
}

// builtin lists the stock templates in their canonical order.
var builtin = []Template{
	{Name: Volcano, Steps: []Step{
		Hill("1", "90-100", "44-56", "40-60"),
		Multiply(Band{Lo: 50, Hi: 100}, 0.8),
		Range("1.5", "30-55", "45-55", "40-60"),
		Smooth(3),
		Hill("1.5", "35-45", "25-30", "20-75"),
		Hill("1", "35-55", "75-80", "25-75"),
		Hill("0.5", "20-25", "10-15", "20-25"),
	}},
	{Name: HighIsland, Steps: []Step{
		Hill("1", "90-100", "65-75", "47-53"),
		Add(BandAll, 7),
		Hill("5-6", "20-30", "25-55", "45-55"),
		Range("1", "40-50", "45-55", "45-55"),
		Multiply(BandLand, 0.8),
		Smooth(2),
		Trough("2-3", "20-30", "20-30", "20-30"),
		Trough("2-3", "20-30", "60-80", "70-80"),
		Hill("1", "10-15", "60", "50"),
		Hill("1.5", "13-16", "15-20", "20-75"),
		Range("1.5", "30-40", "15-85", "30-40"),
		Range("1.5", "30-40", "15-85", "60-70"),
		Pit("3-5", "10-30", "15-85", "20-80"),
	}},
	{Name: LowIsland, Steps: []Step{
		Hill("1", "90-99", "60-80", "45-55"),
		Hill("1-2", "20-30", "10-30", "10-90"),
		Smooth(2),
		Hill("6-7", "25-35", "20-70", "30-70"),
		Range("1", "40-50", "45-55", "45-55"),
		Trough("2-3", "20-30", "15-85", "20-30"),
		Trough("2-3", "20-30", "15-85", "70-80"),
		Hill("1.5", "10-15", "5-15", "20-80"),
		Hill("1", "10-15", "85-95", "70-80"),
		Pit("5-7", "15-25", "15-85", "20-80"),
		Multiply(BandLand, 0.4),
	}},
	{Name: Continents, Steps: []Step{
		Hill("1", "80-85", "60-80", "40-60"),
		Hill("1", "80-85", "20-30", "40-60"),
		Hill("6-7", "15-30", "25-75", "15-85"),
		Multiply(BandLand, 0.6),
		Hill("8-10", "5-10", "15-85", "20-80"),
		Range("1-2", "30-60", "5-15", "25-75"),
		Range("1-2", "30-60", "80-95", "25-75"),
		Range("0-3", "30-60", "80-90", "20-80"),
		Strait("2", Vertical),
		Strait("1", Vertical),
		Smooth(3),
		Trough("3-4", "15-20", "15-85", "20-80"),
		Trough("3-4", "5-10", "45-55", "45-55"),
		Pit("3-4", "10-20", "15-85", "20-80"),
	}},
	{Name: Archipelago, Steps: []Step{
		Add(BandAll, 11),
		Range("2-3", "40-60", "20-80", "20-80"),
		Hill("5", "15-20", "10-90", "30-70"),
		Hill("2", "10-15", "10-30", "20-80"),
		Hill("2", "10-15", "60-90", "20-80"),
		Smooth(3),
		Trough("10", "20-30", "5-95", "5-95"),
		Strait("2", Vertical),
		Strait("2", Horizontal),
	}},
	{Name: Atoll, Steps: []Step{
		Hill("1", "75-80", "50-60", "45-55"),
		Hill("1.5", "30-50", "25-75", "30-70"),
		Hill("0.5", "30-50", "25-35", "30-70"),
		Smooth(1),
		Multiply(Band{Lo: 25, Hi: 100}, 0.2),
		Hill("0.5", "10-20", "50-55", "48-52"),
	}},
	{Name: Mediterranean, Steps: []Step{
		Range("4-6", "30-80", "0-100", "0-10"),
		Range("4-6", "30-80", "0-100", "90-100"),
		Hill("6-8", "30-50", "10-90", "0-5"),
		Hill("6-8", "30-50", "10-90", "95-100"),
		Multiply(BandLand, 0.9),
		Smooth(1),
		Hill("2-3", "30-70", "0-5", "20-80"),
		Hill("2-3", "30-70", "95-100", "20-80"),
		Trough("3-6", "40-50", "0-100", "0-10"),
		Trough("3-6", "40-50", "0-100", "90-100"),
	}},
	{Name: Peninsula, Steps: []Step{
		Range("2-3", "20-35", "40-50", "0-15"),
		Add(BandAll, 5),
		Hill("1", "90-100", "10-90", "0-5"),
		Add(BandAll, 13),
		Hill("3-4", "3-5", "5-95", "80-100"),
		Hill("1-2", "3-5", "5-95", "40-60"),
		Trough("25-30", "3-4", "5-95", "10-90"),
		Range("5-6", "30-40", "10-90", "35-65"),
		Range("5-6", "30-40", "10-90", "35-65"),
		Range("5-6", "30-40", "10-90", "35-65"),
	}},
	{Name: Pangaea, Steps: []Step{
		Hill("1-2", "25-40", "15-50", "0-10"),
		Hill("1-2", "5-40", "50-85", "0-10"),
		Hill("1-2", "25-40", "50-85", "90-100"),
		Hill("1-2", "5-40", "15-50", "90-100"),
		Hill("8-12", "20-40", "20-80", "48-52"),
		Smooth(2),
		Multiply(BandLand, 0.7),
		Trough("3-4", "25-35", "5-95", "10-20"),
		Trough("3-4", "25-35", "5-95", "80-90"),
		Range("5-6", "30-40", "10-90", "35-65"),
	}},
	{Name: Isthmus, Steps: []Step{
		Hill("5-10", "15-30", "0-30", "0-20"),
		Hill("5-10", "15-30", "10-50", "20-40"),
		Hill("5-10", "15-30", "30-70", "40-60"),
		Hill("5-10", "15-30", "50-90", "60-80"),
		Hill("5-10", "15-30", "70-100", "80-100"),
		Smooth(2),
		Trough("4-8", "15-30", "0-30", "0-20"),
		Trough("4-8", "15-30", "10-50", "20-40"),
		Trough("4-8", "15-30", "30-70", "40-60"),
		Trough("4-8", "15-30", "50-90", "60-80"),
		Trough("4-8", "15-30", "70-100", "80-100"),
	}},
}

// Catalog resolves template names. The zero value is not usable; call NewCatalog.
type Catalog struct {
	byName map[string]Template
	order  []string
}

// NewCatalog returns a catalog holding the stock templates.
func NewCatalog() *Catalog {
	c := &Catalog{byName: map[string]Template{}}
	for _, t := range builtin {
		c.add(t)
	}
	return c
}

func (c *Catalog) add(t Template) {
	if _, ok := c.byName[t.Name]; !ok {
		c.order = append(c.order, t.Name)
	}
	c.byName[t.Name] = t
}

// Register adds or replaces a template.
func (c *Catalog) Register(t Template) error {
	name := normalizeName(t.Name)
	if name == "" {
		return fmt.Errorf("heightmap: template name is empty")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("heightmap: template %s has no steps", name)
	}
	for i, st := range t.Steps {
		if _, ok := opNames[st.Op]; !ok {
			return fmt.Errorf("template %s step %d: %w", name, i, ErrUnknownOp)
		}
	}
	t.Name = name
	c.add(t)
	return nil
}

func (c *Catalog) Lookup(name string) (Template, error) {
	t, ok := c.byName[normalizeName(name)]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Names lists stock templates first in canonical order, then custom ones sorted.
func (c *Catalog) Names() []string {
	stock := len(builtin)
	out := append([]string(nil), c.order[:stock]...)
	custom := append([]string(nil), c.order[stock:]...)
	sort.Strings(custom)
	return append(out, custom...)
}

// Templates returns the stock template names.
func Templates() []string {
	out := make([]string, len(builtin))
	for i, t := range builtin {
		out[i] = t.Name
	}
	return out
}

// ParseTemplate resolves a stock template by name. Case, spaces and dashes are ignored.
func ParseTemplate(name string) (Template, error) {
	return NewCatalog().Lookup(name)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "highisland" {
		return HighIsland
	}
	if s == "lowisland" {
		return LowIsland
	}
	return s
}
