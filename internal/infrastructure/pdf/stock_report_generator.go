// Package pdf genera el reporte de observaciones de inventario para administradores.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + generado por  │  Fecha de generación       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Dueños | Temp. prom. | Humedad prom. | Registros   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Dueño | Grano | Cant | T° | H% | Estado | Ub │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 78, Green: 52, Blue: 46}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarning  = &props.Color{Red: 191, Green: 120, Blue: 0}
	colorCritical = &props.Color{Red: 183, Green: 28, Blue: 28}
)

// printer formatea números con separadores en español (1.234,50).
var printer = message.NewPrinter(language.Spanish)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ stock.ReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa stock.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateStockReport(_ context.Context, data stock.ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de condiciones de inventario", true).
		WithAuthor(data.GeneratedBy, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data.Summary, len(data.Rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(data.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("No hay observaciones registradas.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}
	m.AddRows(tableDetailRows(data.Rows)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data stock.ReportData) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("CONDICIONES DE INVENTARIO DE GRANO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado por: "+nonEmpty(data.GeneratedBy, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Fecha: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func summaryRow(s dto.StockSummaryResponse, total int) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 11, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("DUEÑOS DISTINTOS", printer.Sprintf("%d", s.TotalUsers)),
		cell("TEMPERATURA PROMEDIO", printer.Sprintf("%.2f °C", s.AvgTemperature)),
		cell("HUMEDAD PROMEDIO", printer.Sprintf("%.2f %%", s.AvgHumidity)),
		cell("REGISTROS", printer.Sprintf("%d", total)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Actualizado", 2, align.Left),
		h("Dueño", 2, align.Left),
		h("Grano", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("T°", 1, align.Right),
		h("H%", 1, align.Right),
		h("Estado", 1, align.Center),
		h("Ubicación", 2, align.Left),
	)
}

func tableDetailRows(rows []dto.StockResponse) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		owner := fmt.Sprintf("#%d", r.UserID)
		if r.User != nil {
			owner = r.User.Name
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		result = append(result, row.New(7).Add(
			cell(r.LastUpdated.Format("02/01/2006 15:04"), 2, align.Left),
			cell(owner, 2, align.Left),
			cell(r.BeanType, 2, align.Left),
			cell(printer.Sprintf("%.2f", r.Quantity), 1, align.Right),
			cell(printer.Sprintf("%.1f", r.Temperature), 1, align.Right),
			cell(printer.Sprintf("%.1f", r.Humidity), 1, align.Right),
			col.New(1).Add(text.New(r.Status, props.Text{
				Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold, Color: statusColor(r.Status),
			})),
			cell(r.Location, 2, align.Left),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(status string) *props.Color {
	switch status {
	case entity.StockStatusWarning:
		return colorWarning
	case entity.StockStatusCritical:
		return colorCritical
	default:
		return colorGray
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
