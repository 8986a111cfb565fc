// Package csvio reads claims and settlements from CSV and writes match and
// unmatched reports back out.
//
// Column names come from a Profile. Two profiles are built in:
//
//	receivables: invoices.csv (InvoiceNo, ClientName, Description, Amount)
//	             payments.csv (PaymentID, Payer, Description, Amount)
//	payables:    vendor_invoices.csv (InvoiceNo, VendorName, Description, Amount)
//	             outgoing_payments.csv (PaymentID, PaidTo, Description, Amount)
package csvio

import (
	"fmt"
	"sort"
)

// Profile names the CSV columns and default file names for one
// reconciliation mode.
type Profile struct {
	Name string

	ClaimID           string
	ClaimCounterparty string
	ClaimDescription  string
	ClaimAmount       string

	SettlementID           string
	SettlementCounterparty string
	SettlementDescription  string
	SettlementAmount       string

	MatchedSettlementID string
	MatchedAmount       string
	MatchScore          string
	RemainingAmount     string

	ClaimsFile      string
	SettlementsFile string
	MatchedFile     string
	UnmatchedFile   string
}

// Receivables reconciles customer invoices against incoming payments.
var Receivables = Profile{
	Name:                   "receivables",
	ClaimID:                "InvoiceNo",
	ClaimCounterparty:      "ClientName",
	ClaimDescription:       "Description",
	ClaimAmount:            "Amount",
	SettlementID:           "PaymentID",
	SettlementCounterparty: "Payer",
	SettlementDescription:  "Description",
	SettlementAmount:       "Amount",
	MatchedSettlementID:    "MatchedWithPaymentID",
	MatchedAmount:          "MatchedAmount",
	MatchScore:             "MatchScore",
	RemainingAmount:        "RemainingAmount",
	ClaimsFile:             "invoices.csv",
	SettlementsFile:        "payments.csv",
	MatchedFile:            "matched_invoices.csv",
	UnmatchedFile:          "unpaid_invoices.csv",
}

// Payables reconciles vendor invoices against outgoing payments.
var Payables = Profile{
	Name:                   "payables",
	ClaimID:                "InvoiceNo",
	ClaimCounterparty:      "VendorName",
	ClaimDescription:       "Description",
	ClaimAmount:            "Amount",
	SettlementID:           "PaymentID",
	SettlementCounterparty: "PaidTo",
	SettlementDescription:  "Description",
	SettlementAmount:       "Amount",
	MatchedSettlementID:    "MatchedWithPaymentID",
	MatchedAmount:          "MatchedAmount",
	MatchScore:             "MatchScore",
	RemainingAmount:        "RemainingAmount",
	ClaimsFile:             "vendor_invoices.csv",
	SettlementsFile:        "outgoing_payments.csv",
	MatchedFile:            "matched_payables.csv",
	UnmatchedFile:          "unpaid_vendor_invoices.csv",
}

var profiles = map[string]Profile{
	Receivables.Name: Receivables,
	Payables.Name:    Payables,
}

// ProfileFor looks up a built-in profile by name.
func ProfileFor(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown mode %q (valid: %v)", name, ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the built-in profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
