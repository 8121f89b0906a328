package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/types"
)

// items table column anchors
const (
	colDescX    = Margin + 2
	colDescW    = 100.0
	colQtyX     = Margin + 118
	colPriceX   = Margin + 148
	colAmountX  = PageWidth - Margin - 2
	totalsLabel = PageWidth - Margin - 70
)

// headerBlock draws business identity on one side and the title with
// number and dates on the other, mirrored for the modern layout. It returns
// the bottom of the block.
func (c *composer) headerBlock(top float64) float64 {
	d := c.doc
	dn := c.fam.density

	bizX, bizAlign := Margin, AlignLeft
	titleX, titleAlign := PageWidth-Margin, AlignRight
	if c.style.Layout.Mirrored() {
		bizX, bizAlign, titleX, titleAlign = titleX, titleAlign, bizX, bizAlign
	}

	fillAt := -1
	if c.style.HeaderBgFill {
		fillAt = len(c.els)
		c.els = append(c.els, Element{
			Kind: KindRect, Block: types.BlockHeader, Role: RoleHeaderFill, Fill: true,
			X: 0, Y: 0, W: PageWidth, Color: c.header,
		})
	}
	ink, soft := c.header, Muted
	if c.style.HeaderBgFill {
		ink, soft = White, White
	}

	y := top
	if logo := c.opts.Logo; logo != nil {
		w, h := logo.FitMM(LogoMaxWidth, LogoMaxHeight)
		x := bizX
		if bizAlign == AlignRight {
			x -= w
		}
		c.els = append(c.els, Element{
			Kind: KindImage, Block: types.BlockHeader, Role: RoleLogo,
			X: x, Y: y, W: w, H: h, Logo: logo,
		})
		y += h + 3
	}
	biz := line{block: types.BlockHeader, x: bizX, align: bizAlign}

	nameLine := biz
	nameLine.font, nameLine.color = c.font("B", 16), ink
	nameLine.field, nameLine.value = document.FieldBusinessName, d.Business.Name
	c.emit(&c.els, y, 7*dn, nameLine)
	y += 7 * dn

	small := 4.5 * dn
	for _, f := range []struct{ field, value string }{
		{document.FieldBusinessEmail, d.Business.Email},
		{document.FieldBusinessPhone, d.Business.Phone},
	} {
		l := biz
		l.font, l.color = c.font("", 9), soft
		l.field, l.value = f.field, f.value
		c.emit(&c.els, y, small, l)
		y += small
	}
	bizBottom := y

	ty := top
	titleFont := Font{
		Family: c.style.FontFamily,
		Style:  c.fam.titleStyle,
		Size:   c.fam.titleSize * c.sizeScale(),
	}
	tlh := titleFont.Size * PtToMM * 1.3
	c.emit(&c.els, ty, tlh, line{
		block: types.BlockHeader, role: RoleTitle, x: titleX, align: titleAlign,
		font: titleFont, color: ink, value: d.Type.Title(),
	})
	ty += tlh

	meta := []struct{ label, field, value string }{
		{"No: ", document.FieldDocumentNumber, d.Number},
		{"Date: ", document.FieldIssueDate, d.IssueDate},
	}
	if label, value := d.ExpiryOrDue(); label != "" {
		field := document.FieldDueDate
		if d.Type == types.DocumentTypeQuotation {
			field = document.FieldExpiryDate
		}
		meta = append(meta, struct{ label, field, value string }{label + ": ", field, value})
	}
	for _, m := range meta {
		c.emit(&c.els, ty, 5*dn, line{
			block: types.BlockHeader, x: titleX, align: titleAlign,
			font: c.font("", 10), color: soft,
			label: m.label, field: m.field, value: m.value,
		})
		ty += 5 * dn
	}

	bottom := math.Max(bizBottom, ty) + 4*dn
	if fillAt >= 0 {
		c.els[fillAt].H = bottom
	}
	if c.fam.headerRule {
		c.els = append(c.els, Element{
			Kind: KindLine, Block: types.BlockHeader, Role: RoleHeaderRule,
			X: Margin, Y: bottom, X2: PageWidth - Margin, Y2: bottom,
			Color: c.accent, LineWidth: 0.6,
		})
	}
	return bottom
}

// detailsBlock draws the From and counterparty address columns
func (c *composer) detailsBlock(top float64) float64 {
	d := c.doc
	dn := c.fam.density
	colW := ContentWidth/2 - 5
	fromX, toX := Margin, Margin+ContentWidth/2+5
	if c.style.Layout.Mirrored() {
		fromX, toX = toX, fromX
	}
	lh, body := 5*dn, 4.5*dn

	column := func(x float64, label string, name, address, extra line) float64 {
		y := top
		c.emit(&c.els, y, lh, line{
			block: types.BlockDetails, x: x, font: c.font("B", 10), color: c.accent, value: label,
		})
		y += lh
		for _, l := range []*line{&name, &address, &extra} {
			l.block, l.x = types.BlockDetails, x
		}
		name.font, name.color = c.font("B", 10), Black
		c.emit(&c.els, y, lh, name)
		y += lh
		address.font, address.color = c.font("", 9), Black
		y += c.emitWrapped(&c.els, y, body, colW, address)
		if extra.field != "" {
			extra.font, extra.color = c.font("", 9), Muted
			c.emit(&c.els, y, body, extra)
			y += body
		}
		return y
	}

	var taxID line
	if d.Type == types.DocumentTypeProforma || d.Business.TaxID != "" {
		taxID = line{label: "Tax ID: ", field: document.FieldTaxID, value: d.Business.TaxID}
	}
	fromBottom := column(fromX, "From",
		line{field: document.FieldBusinessName, value: d.Business.Name},
		line{field: document.FieldBusinessAddress, value: d.Business.Address},
		taxID,
	)
	toBottom := column(toX, d.Type.CounterpartyLabel(),
		line{field: document.FieldCustomerName, value: d.Customer.Name},
		line{field: document.FieldCustomerAddress, value: d.Customer.Address},
		line{field: document.FieldCustomerEmail, value: d.Customer.Email},
	)
	return math.Max(fromBottom, toBottom) + 2*dn
}

// itemsBlock draws the table header row and one row per item in order.
// Rows whose bottom would pass limit are dropped and counted.
func (c *composer) itemsBlock(top, limit float64) float64 {
	dn := c.fam.density
	hh, rh := 8*dn, 7*dn

	headFont, headColor := c.font("B", 9), c.header
	switch c.style.TableStyle {
	case types.TableStyleFilled:
		c.els = append(c.els, Element{
			Kind: KindRect, Block: types.BlockItemsTable, Role: RoleTableHeader, Fill: true,
			X: Margin, Y: top, W: ContentWidth, H: hh, Color: c.header,
		})
		headColor = White
	case types.TableStyleBold:
		c.els = append(c.els, Element{
			Kind: KindLine, Block: types.BlockItemsTable, Role: RoleTableHeader,
			X: Margin, Y: top + hh, X2: PageWidth - Margin, Y2: top + hh,
			Color: c.header, LineWidth: 0.6,
		})
	case types.TableStyleMinimal:
		headFont, headColor = c.font("", 9), Muted
		c.els = append(c.els, Element{
			Kind: KindLine, Block: types.BlockItemsTable, Role: RoleTableHeader,
			X: Margin, Y: top + hh, X2: PageWidth - Margin, Y2: top + hh,
			Color: RuleGrey, LineWidth: 0.2,
		})
	default:
		headColor = Black
	}
	for _, h := range []struct {
		x     float64
		align Align
		text  string
	}{
		{colDescX, AlignLeft, "Description"},
		{colQtyX, AlignRight, "Qty"},
		{colPriceX, AlignRight, "Price"},
		{colAmountX, AlignRight, "Amount"},
	} {
		c.emit(&c.els, top+1, hh-2, line{
			block: types.BlockItemsTable, role: RoleTableHeader,
			x: h.x, align: h.align, font: headFont, color: headColor, value: h.text,
		})
	}

	cur := c.doc.CurrencyCode()
	cell := c.font("", 9)
	y := top + hh
	for i, it := range c.doc.Items {
		if y+rh > limit {
			c.truncated = len(c.doc.Items) - i
			break
		}
		row := line{block: types.BlockItemsTable, font: cell, color: Black}
		cells := []line{
			{x: colDescX, field: document.ItemField(i, document.ItemDescription),
				value: Ellipsize(c.m, it.Description, cell, colDescW)},
			{x: colQtyX, align: AlignRight, field: document.ItemField(i, document.ItemQuantity),
				value: formatQuantity(it.Quantity)},
			{x: colPriceX, align: AlignRight, field: document.ItemField(i, document.ItemUnitPrice),
				value: types.FormatAmount(it.UnitPrice, cur)},
			{x: colAmountX, align: AlignRight, value: types.FormatAmount(it.Amount(), cur)},
		}
		for _, cl := range cells {
			cl.block, cl.font, cl.color = row.block, row.font, row.color
			c.emit(&c.els, y+0.5, rh-1, cl)
		}
		if c.style.TableStyle != types.TableStylePlain {
			c.els = append(c.els, Element{
				Kind: KindLine, Block: types.BlockItemsTable,
				X: Margin, Y: y + rh, X2: PageWidth - Margin, Y2: y + rh,
				Color: RuleGrey, LineWidth: 0.1,
			})
		}
		y += rh
	}
	return y
}

// totalsBlock returns the right aligned totals stack laid out from y=0.
// Tax, discount and shipping appear only when nonzero.
func (c *composer) totalsBlock() ([]Element, float64) {
	var els []Element
	dn := c.fam.density
	lh := 6 * dn
	cur := c.doc.CurrencyCode()
	t := c.totals
	valueX := PageWidth - Margin

	y := 0.0
	row := func(label, value string) {
		c.emit(&els, y, lh, line{
			block: types.BlockTotals, x: totalsLabel, font: c.font("", 9.5), color: Muted, value: label,
		})
		c.emit(&els, y, lh, line{
			block: types.BlockTotals, x: valueX, align: AlignRight, font: c.font("", 9.5), color: Black, value: value,
		})
		y += lh
	}
	row("Subtotal", types.FormatAmount(t.Subtotal, cur))
	if t.TaxAmount != 0 {
		row(fmt.Sprintf("Tax (%s%%)", formatQuantity(c.doc.TaxPercent)), types.FormatAmount(t.TaxAmount, cur))
	}
	if t.Discount != 0 {
		row("Discount", types.FormatAmount(-t.Discount, cur))
	}
	if t.Shipping != 0 {
		row("Shipping", types.FormatAmount(t.Shipping, cur))
	}

	y += 1
	els = append(els, Element{
		Kind: KindLine, Block: types.BlockTotals,
		X: totalsLabel, Y: y, X2: valueX, Y2: y,
		Color: c.header, LineWidth: 0.4,
	})
	y += 1.5

	tlh := 8 * dn
	for _, l := range []line{
		{x: totalsLabel, value: "Total"},
		{x: valueX, align: AlignRight, value: types.FormatAmount(t.Total, cur)},
	} {
		l.block, l.role, l.font, l.color = types.BlockTotals, RoleTotal, c.font("B", 12), c.header
		c.emit(&els, y, tlh, l)
	}
	y += tlh
	return els, y
}

type section struct {
	heading string
	field   string
	value   string
}

func (c *composer) sections() []section {
	d := c.doc
	switch d.Type {
	case types.DocumentTypeInvoice:
		return []section{
			{"Payment Terms", document.FieldPaymentTerms, d.PaymentTerms},
			{"Notes", document.FieldNotes, d.Notes},
		}
	case types.DocumentTypeQuotation:
		return []section{
			{"Validity Period", document.FieldValidityPeriod, d.ValidityPeriod},
			{"Scope Limitations", document.FieldScopeLimitations, d.ScopeLimitations},
		}
	case types.DocumentTypeProforma:
		return []section{
			{"Bank Details", document.FieldBankDetails, d.BankDetails},
			{"Terms of Sale", document.FieldTermsOfSale, d.TermsOfSale},
			{"Delivery Terms", document.FieldDeliveryTerms, d.DeliveryTerms},
		}
	case types.DocumentTypeReceipt:
		return []section{
			{"Payment Method", document.FieldPaymentMethod, d.PaymentMethod},
		}
	}
	return nil
}

// footerBlock returns the type specific narrative sections and the typed
// signature, laid out from y=0. Empty sections keep their space so the
// export matches the editor.
func (c *composer) footerBlock() ([]Element, float64) {
	var els []Element
	dn := c.fam.density
	hl, bl := 5*dn, 4.2*dn
	hasSignature := c.doc.Type.HasSignature()
	width := ContentWidth
	if hasSignature {
		width = ContentWidth - 75
	}

	y := 0.0
	for _, s := range c.sections() {
		if s.value != "" || c.opts.Placeholders {
			c.emit(&els, y, hl, line{
				block: types.BlockFooter, x: Margin, font: c.font("B", 9), color: c.accent, value: s.heading,
			})
		}
		y += hl
		y += c.emitWrapped(&els, y, bl, width, line{
			block: types.BlockFooter, x: Margin, font: c.font("", 8.5), color: Black,
			field: s.field, value: s.value,
		})
		y += 3 * dn
	}

	if hasSignature {
		cx := PageWidth - Margin - 30
		c.emit(&els, 0, 10, line{
			block: types.BlockFooter, role: RoleSignature, x: cx, align: AlignCenter,
			font:  Font{Family: types.FontTimes, Style: "I", Size: 18},
			color: c.header, field: document.FieldSignature, value: c.doc.Signature,
		})
		els = append(els, Element{
			Kind: KindLine, Block: types.BlockFooter,
			X: PageWidth - Margin - 60, Y: 11, X2: PageWidth - Margin, Y2: 11,
			Color: Muted, LineWidth: 0.3,
		})
		c.emit(&els, 12, 4, line{
			block: types.BlockFooter, x: cx, align: AlignCenter,
			font: c.font("", 8), color: Muted, value: "Authorized Signature",
		})
		y = math.Max(y, 17)
	}
	return els, y
}

func formatQuantity(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
