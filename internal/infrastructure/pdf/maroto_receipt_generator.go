// Package pdf genera el comprobante de préstamo que se entrega con los dispositivos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sede + contacto     │  N° Alquiler + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  USUARIO: Nombre + teléfono + nota                           │
//	│  PERÍODO: inicio → devolución                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Dispositivo | Seriales                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + leyenda de devolución               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "2006-01-02"

var _ rental.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa rental.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateRentalReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateRentalReceipt(
	_ context.Context,
	r *entity.Rental,
	facility *entity.Facility,
	lines []rental.ReceiptLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de préstamo", true).
		WithAuthor(facility.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r, facility))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(borrowerRow(r))
	m.AddRows(periodRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: sede + contacto (izq) y N° de alquiler + fecha (der).
func headerRow(r *entity.Rental, facility *entity.Facility) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(facility.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s", nonEmpty(facility.Address, "—"), nonEmpty(facility.Phone, "—")), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE PRÉSTAMO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(r.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+r.CreatedAt.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func borrowerRow(r *entity.Rental) core.Row {
	detail := "Tel: " + nonEmpty(r.BorrowerPhone, "—")
	if r.Note != "" {
		detail += "   |   " + r.Note
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("USUARIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(r.BorrowerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func periodRow(r *entity.Rental) core.Row {
	period := r.StartDate.Format(dateLayout) + "  →  " + r.DueDate.Format(dateLayout)
	if r.ReturnedAt != nil {
		period += "   (devuelto " + r.ReturnedAt.Format(dateLayout) + ")"
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New("PERÍODO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(period, props.Text{Size: 9, Top: 5}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Dispositivo", 5, align.Left),
		h("Seriales", 6, align.Left),
	)
}

// tableLineRows: una fila por línea del alquiler.
func tableLineRows(lines []rental.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.DeviceTypeName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(nonEmpty(strings.Join(l.Serials, ", "), "—"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return result
}

// footerRow: QR con el ID completo para ubicar el alquiler al momento de la devolución.
func footerRow(r *entity.Rental) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(r.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Presente este código al devolver los dispositivos.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Fecha límite de devolución: "+r.DueDate.Format(dateLayout), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
