package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

// Books set names produced from Odoo registers.
const (
	SetB2B         = "B2B"
	SetVendorCN    = "V CN"
	SetRCM         = "RCM"
	SetVendorCNRCM = "V CN RCM"
)

// OdooSlots holds the four optional Odoo tax-register exports.
type OdooSlots struct {
	RegularCGST *Upload
	RegularIGST *Upload
	RCMCGST     *Upload
	RCMIGST     *Upload
}

// Empty reports whether no register was supplied.
func (s OdooSlots) Empty() bool {
	return s.RegularCGST == nil && s.RegularIGST == nil && s.RCMCGST == nil && s.RCMIGST == nil
}

type odooSlot struct {
	label  string
	upload *Upload
	rcm    bool
}

func (s OdooSlots) list() []odooSlot {
	return []odooSlot{
		{"Regular CGST", s.RegularCGST, false},
		{"Regular IGST", s.RegularIGST, false},
		{"RCM CGST", s.RCMCGST, true},
		{"RCM IGST", s.RCMIGST, true},
	}
}

// ReadOdoo reads Odoo tax registers into the B2B, V CN, RCM and V CN RCM
// sets. Each row is one tax journal line; its tax amount is routed to a head
// by the account name.
func ReadOdoo(slots OdooSlots) ([]domain.RecordSet, error) {
	if slots.Empty() {
		return nil, fmt.Errorf("ingest.ReadOdoo: %w", domain.ErrMissingBooksFile)
	}

	buckets := map[string]*domain.RecordSet{}
	order := []string{SetB2B, SetVendorCN, SetRCM, SetVendorCNRCM}
	for _, name := range order {
		buckets[name] = &domain.RecordSet{Name: name, Side: domain.SideBooks}
	}

	for _, slot := range slots.list() {
		if slot.upload == nil {
			continue
		}
		rows, err := readRows(*slot.upload)
		if err != nil {
			return nil, fmt.Errorf("ingest.ReadOdoo: %s: %w", slot.label, err)
		}
		if len(rows) == 0 {
			continue
		}
		t := newTable(rows[0], rows[1:])
		if !t.has(fieldAccount) {
			return nil, fmt.Errorf("ingest.ReadOdoo: %s: missing Account column: %w", slot.label, domain.ErrInvalidInput)
		}

		for _, row := range t.rows {
			if blankRow(row) {
				continue
			}
			r, set := odooRecord(t, row, slot)
			buckets[set].Records = append(buckets[set].Records, r)
		}
	}

	var sets []domain.RecordSet
	for _, name := range order {
		if len(buckets[name].Records) > 0 {
			sets = append(sets, *buckets[name])
		}
	}
	return sets, nil
}

func odooRecord(t *table, row []string, slot odooSlot) (domain.TaxRecord, string) {
	debit := t.amount(row, fieldDebit)
	credit := t.amount(row, fieldCredit)

	// Regular registers carry purchases as debits; a credit is a vendor credit
	// note. RCM registers are booked the other way round.
	primary, secondary := credit, debit
	set, cnSet := SetB2B, SetVendorCN
	if slot.rcm {
		primary, secondary = debit, credit
		set, cnSet = SetRCM, SetVendorCNRCM
	}
	creditNote := !primary.IsZero()
	tax := secondary
	if creditNote {
		tax = primary
		set = cnSet
	}

	invoice := t.str(row, fieldReference)
	if invoice == "" {
		invoice = t.str(row, fieldNumber)
	}
	taxable := t.amount(row, fieldTaxable)
	if slot.rcm && creditNote {
		taxable = taxable.Neg()
	}

	r := domain.TaxRecord{
		InvoiceNumber: invoice,
		TaxableAmount: taxable,
		GSTIN:         t.str(row, fieldGSTIN),
		InvoiceDate:   t.date(row, fieldDate),
		PartyName:     t.str(row, fieldParty),
		SourceLabel:   slot.label,
		IsCreditNote:  creditNote,
	}
	routeTax(&r, t.str(row, fieldAccount), tax)
	return r, set
}

// routeTax assigns a ledger line's tax to the head named by its account and
// mirrors CGST into SGST when the register carries only the central half.
func routeTax(r *domain.TaxRecord, account string, tax decimal.Decimal) {
	acct := strings.ToLower(account)
	switch {
	case strings.Contains(acct, "igst"):
		r.IGST = tax
	case strings.Contains(acct, "cgst"):
		r.CGST = tax
	case strings.Contains(acct, "sgst"):
		r.SGST = tax
	}
	if !r.CGST.IsZero() && r.SGST.IsZero() {
		r.SGST = r.CGST
	}
}
