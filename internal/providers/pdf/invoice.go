package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Maroto struct{}

func New() Provider {
	return &Maroto{}
}

func (p *Maroto) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Seite {current} von {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	// Letterhead
	m.AddRow(20,
		col.New(8).Add(
			text.New(doc.CompanyName, props.Text{Size: 14, Style: fontstyle.Bold}),
			text.New(doc.CompanyAddress, props.Text{Size: 9, Top: 7}),
			text.New(doc.CompanyContact, props.Text{Size: 9, Top: 11}),
		),
		col.New(4).Add(
			text.New(doc.TaxNumber, props.Text{Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(14,
		text.NewCol(8, doc.Title+" "+doc.Number, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
			Top:   2,
		}),
		col.New(4),
	)

	// Recipient and dates
	m.AddRow(28,
		col.New(6).Add(
			text.New(doc.CustomerName, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.New(doc.CustomerAddress, props.Text{Size: 10, Top: 5}),
		),
		col.New(6).Add(
			text.New(doc.DateLabel+": "+doc.Date, props.Text{Size: 10, Align: align.Right}),
			text.New(doc.DueDateLabel+": "+doc.DueDate, props.Text{Size: 10, Top: 5, Align: align.Right}),
		),
	)

	// Items table
	m.AddRow(8,
		text.NewCol(1, "Pos.", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(5, "Beschreibung", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Menge", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Einzelpreis", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Gesamt", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(1, fmt.Sprintf("%d", item.Position), props.Text{Size: 9}),
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Total, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	// Totals
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Zwischensumme", props.Text{Size: 9}),
		text.NewCol(2, doc.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	if doc.TaxApplied {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, doc.TaxLabel, props.Text{Size: 9}),
			text.NewCol(2, doc.TaxAmount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(9,
		col.New(8),
		text.NewCol(2, "Gesamtbetrag", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, doc.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if doc.Notes != "" {
		m.AddRow(16,
			text.NewCol(12, doc.Notes, props.Text{Size: 9, Top: 4}),
		)
	}

	// Payment footer
	if doc.Footer != "" {
		m.AddRow(2, line.NewCol(12))
		m.AddRow(18,
			text.NewCol(12, doc.Footer, props.Text{Size: 8, Top: 2}),
		)
	}

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return rendered.GetBytes(), nil
}
