// Package engine holds the pure computation core of the planner:
// category aggregation, calendar bucketing and budget evaluation.
// Nothing in this package performs I/O; every function is a
// deterministic fold over its inputs.
package engine

import (
	"strings"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// UncategorizedName is the synthetic category assigned to records
// whose category field is empty or undecodable.
const UncategorizedName = "Sin categoría"

// FallbackColor and FallbackIcon are applied to any category the
// resolver does not know.
const (
	FallbackColor = "#6C757D"
	FallbackIcon  = "ellipsis-horizontal"
)

var categoryColors = map[string]string{
	"alimentación":    "#FF6B6B",
	"transporte":      "#4ECDC4",
	"vivienda":        "#45B7D1",
	"salud":           "#96CEB4",
	"entretenimiento": "#FFEAA7",
	"compras":         "#DDA0DD",
	"educación":       "#74B9FF",
	"servicios":       "#A29BFE",
	"otros gastos":    FallbackColor,
	"otros":           FallbackColor,
}

var categoryIcons = map[string]string{
	"alimentación":    "restaurant",
	"transporte":      "car",
	"vivienda":        "home",
	"salud":           "medical",
	"entretenimiento": "game-controller",
	"compras":         "bag",
	"educación":       "school",
	"servicios":       "wifi",
	"otros gastos":    FallbackIcon,
	"otros":           FallbackIcon,
}

// ColorFor resolves the display color for a category name.
func ColorFor(name string) string {
	if c, ok := categoryColors[strings.ToLower(name)]; ok {
		return c
	}
	return FallbackColor
}

// IconFor resolves the display icon for a category name.
func IconFor(name string) string {
	if i, ok := categoryIcons[strings.ToLower(name)]; ok {
		return i
	}
	return FallbackIcon
}

// DefaultCatalog returns the built-in expense catalog used when the
// remote catalog is unavailable. Callers get a fresh slice each time
// and may mutate it freely.
func DefaultCatalog() []domain.Category {
	names := []string{
		"Alimentación",
		"Transporte",
		"Vivienda",
		"Salud",
		"Entretenimiento",
		"Compras",
		"Educación",
		"Servicios",
		"Otros Gastos",
	}
	catalog := make([]domain.Category, 0, len(names))
	for i, name := range names {
		catalog = append(catalog, domain.Category{
			ID:    int64(i + 1),
			Name:  name,
			Kind:  domain.KindExpense,
			Color: ColorFor(name),
			Icon:  IconFor(name),
		})
	}
	return catalog
}

// Decorate fills in missing colors and icons on a fetched catalog so
// every category renders even when the store row carries no styling.
func Decorate(catalog []domain.Category) []domain.Category {
	out := make([]domain.Category, len(catalog))
	for i, c := range catalog {
		if c.Color == "" {
			c.Color = ColorFor(c.Name)
		}
		if c.Icon == "" {
			c.Icon = IconFor(c.Name)
		}
		out[i] = c
	}
	return out
}
