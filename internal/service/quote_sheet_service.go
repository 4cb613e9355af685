package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

const sheetName = "Quote"

type QuoteSheetService struct {
	store   QuoteStore
	tmpl    *template.Template
	printer *message.Printer
	now     func() time.Time
}

func NewQuoteSheetService(store QuoteStore, htmlTemplate string) (*QuoteSheetService, error) {
	tmpl, err := template.New("quote").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse quote template: %w", err)
	}
	return &QuoteSheetService{
		store:   store,
		tmpl:    tmpl,
		printer: message.NewPrinter(language.Korean),
		now:     time.Now,
	}, nil
}

type SheetRow struct {
	Label     string
	Value     string
	Number    *float64
	NumFmt    string
	Estimated bool
	Total     bool
}

type SheetSection struct {
	Title string
	Rows  []SheetRow
}

type QuoteSheet struct {
	ReservationNumber string
	ProductName       string
	Status            string
	HSCode            string
	GeneratedAt       string
	Sections          []SheetSection
}

const (
	fmtWon     = "#,##0"
	fmtCount   = "#,##0"
	fmtPrice   = "#,##0.00"
	fmtCBM     = "0.0000"
	fmtPercent = `0.00"%"`
)

func (s *QuoteSheetService) row(label string, v *float64, numFmt, printf string) SheetRow {
	r := SheetRow{Label: label, NumFmt: numFmt}
	if v != nil {
		n := *v
		r.Number = &n
		r.Value = s.printer.Sprintf(printf, n)
	}
	return r
}

func (s *QuoteSheetService) intRow(label string, v *int) SheetRow {
	if v == nil {
		return SheetRow{Label: label, NumFmt: fmtCount}
	}
	f := float64(*v)
	return s.row(label, &f, fmtCount, "%.0f")
}

func textRow(label string, v *string) SheetRow {
	r := SheetRow{Label: label}
	if v != nil {
		r.Value = *v
	}
	return r
}

func (s *QuoteSheetService) Build(q *model.Quote) *QuoteSheet {
	sheet := &QuoteSheet{
		ReservationNumber: q.ReservationNumber,
		ProductName:       q.ProductName,
		Status:            q.Status,
		GeneratedAt:       s.now().Format("2006-01-02 15:04 MST"),
	}
	if q.HSCode != nil {
		sheet.HSCode = *q.HSCode
	}

	var boxSize *string
	if q.BoxLength != nil && q.BoxWidth != nil && q.BoxHeight != nil {
		v := s.printer.Sprintf("%.1f × %.1f × %.1f cm", *q.BoxLength, *q.BoxWidth, *q.BoxHeight)
		boxSize = &v
	}

	exchangeRate := s.row("Exchange rate (KRW/CNY)", q.ExchangeRate, fmtPrice, "%.2f")
	exchangeRate.Estimated = q.ExchangeRateEstimated
	var rateDate *string
	if q.ExchangeRateDate != nil {
		v := q.ExchangeRateDate.Format("2006-01-02")
		rateDate = &v
	}
	customsRate := s.row("Customs rate", q.CustomsRate, fmtPercent, "%.2f%%")
	customsRate.Estimated = q.CustomsRateEstimated

	shipping := s.row("LCL shipping fee", q.LCLShippingFee, fmtWon, "%.0f")
	if q.ShippingMethod != nil && *q.ShippingMethod == "FCL" {
		shipping = s.row("FCL shipping fee", q.FCLShippingFee, fmtWon, "%.0f")
	}

	first := s.row("First payment", q.FirstPaymentAmount, fmtWon, "%.0f")
	first.Total = true
	second := s.row("Second payment (expected)", q.ExpectedSecondPayment, fmtWon, "%.0f")
	second.Total = true
	unit := s.row("Expected unit price", q.ExpectedUnitPrice, fmtWon, "%.0f")
	unit.Total = true

	sheet.Sections = []SheetSection{
		{Title: "Order", Rows: []SheetRow{
			s.intRow("Quoted quantity", q.QuotedQuantity),
			s.intRow("Units per box", q.UnitsPerBox),
			s.intRow("Total boxes", q.TotalBoxes),
			textRow("Box size", boxSize),
			s.row("Total CBM", q.TotalCBM, fmtCBM, "%.4f"),
			textRow("Shipping method", q.ShippingMethod),
		}},
		{Title: "Product cost", Rows: []SheetRow{
			s.row("Unit price (CNY)", q.OriginUnitPrice, fmtPrice, "%.2f"),
			s.row("China shipping fee (CNY)", q.OriginShippingFee, fmtPrice, "%.2f"),
			exchangeRate,
			textRow("Exchange rate date", rateDate),
			s.row("EXW total", q.EXWTotal, fmtWon, "%.0f"),
			s.row("Commission rate", q.CommissionRate, fmtPercent, "%.2f%%"),
			s.row("Commission", q.CommissionAmount, fmtWon, "%.0f"),
			first,
		}},
		{Title: "Import cost", Rows: []SheetRow{
			shipping,
			customsRate,
			s.row("Customs duty", q.CustomsDuty, fmtWon, "%.0f"),
			s.row("Import VAT", q.ImportVAT, fmtWon, "%.0f"),
			second,
		}},
		{Title: "Summary", Rows: []SheetRow{
			s.row("Expected total supply price", q.ExpectedTotalSupplyPrice, fmtWon, "%.0f"),
			unit,
		}},
	}
	return sheet
}

func (s *QuoteSheetService) load(ctx context.Context, reservationNumber string) (*QuoteSheet, error) {
	q, err := s.store.Get(ctx, reservationNumber)
	if err != nil {
		return nil, err
	}
	return s.Build(q), nil
}

func (s *QuoteSheetService) RenderHTML(ctx context.Context, reservationNumber string) ([]byte, error) {
	sheet, err := s.load(ctx, reservationNumber)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, sheet); err != nil {
		return nil, fmt.Errorf("render quote sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *QuoteSheetService) RenderXLSX(ctx context.Context, reservationNumber string) ([]byte, error) {
	sheet, err := s.load(ctx, reservationNumber)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F3F5F7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	estimatedStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "#B26A00"}})
	if err != nil {
		return nil, fmt.Errorf("create estimated style: %w", err)
	}

	numStyles := map[string]int{}
	numStyle := func(numFmt string, total bool) (int, error) {
		key := fmt.Sprintf("%s|%t", numFmt, total)
		if id, ok := numStyles[key]; ok {
			return id, nil
		}
		style := &excelize.Style{CustomNumFmt: &numFmt}
		if total {
			style.Font = &excelize.Font{Bold: true}
			style.Border = []excelize.Border{{Type: "top", Color: "000000", Style: 2}}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return 0, err
		}
		numStyles[key] = id
		return id, nil
	}

	set := func(cell string, value any) error {
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		return nil
	}

	if err := set("A1", sheet.ProductName); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}
	if err := set("A2", sheet.ReservationNumber); err != nil {
		return nil, err
	}
	if err := set("B2", sheet.HSCode); err != nil {
		return nil, err
	}

	rowNum := 4
	for _, section := range sheet.Sections {
		cell := fmt.Sprintf("A%d", rowNum)
		if err := set(cell, section.Title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, fmt.Sprintf("C%d", rowNum), headerStyle); err != nil {
			return nil, fmt.Errorf("style section %s: %w", section.Title, err)
		}
		rowNum++

		for _, r := range section.Rows {
			if err := set(fmt.Sprintf("A%d", rowNum), r.Label); err != nil {
				return nil, err
			}
			valueCell := fmt.Sprintf("B%d", rowNum)
			switch {
			case r.Number != nil:
				if err := set(valueCell, *r.Number); err != nil {
					return nil, err
				}
				id, err := numStyle(r.NumFmt, r.Total)
				if err != nil {
					return nil, fmt.Errorf("create number style: %w", err)
				}
				if err := f.SetCellStyle(sheetName, valueCell, valueCell, id); err != nil {
					return nil, fmt.Errorf("style %s: %w", valueCell, err)
				}
			case r.Value != "":
				if err := set(valueCell, r.Value); err != nil {
					return nil, err
				}
			}
			if r.Estimated {
				noteCell := fmt.Sprintf("C%d", rowNum)
				if err := set(noteCell, "estimated"); err != nil {
					return nil, err
				}
				if err := f.SetCellStyle(sheetName, noteCell, noteCell, estimatedStyle); err != nil {
					return nil, fmt.Errorf("style %s: %w", noteCell, err)
				}
			}
			rowNum++
		}
		rowNum++
	}

	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "B", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
