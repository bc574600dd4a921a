// Package model defines the closed data schemas shared across the outreach
// workflow: property tax records, owner contact records, and the notification
// outcome ledger.
package model

// AccountStatus is the payment status of a tax account.
type AccountStatus string

const (
	AccountStatusUnpaid  AccountStatus = "Unpaid"
	AccountStatusPaid    AccountStatus = "Paid"
	AccountStatusPending AccountStatus = "Pending"
)

// Valid reports whether s is one of the known account statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusUnpaid, AccountStatusPaid, AccountStatusPending:
		return true
	}
	return false
}

// PropertyRecord is one row of a tax certificate roll. Account numbers are
// not unique: a property can carry multiple certificates.
type PropertyRecord struct {
	AccountNumber   string        `json:"account_number" csv:"Account Number"`
	Status          AccountStatus `json:"account_status" csv:"Account Status"`
	OwnerName       string        `json:"owner_name" csv:"Owner Name"`
	PropertyAddress string        `json:"property_address" csv:"Property Address"`
	OwnerAddress    string        `json:"owner_address,omitempty" csv:"Owner Address,omitempty"`
	BalanceAmount   float64       `json:"balance_amount" csv:"Balance Amount"`
	AssessedValue   int           `json:"assessed_value" csv:"Assessed Value"`
	TaxYear         int           `json:"tax_yr" csv:"Tax Yr"`
	RollYear        int           `json:"roll_yr" csv:"Roll Yr"`
	CertStatus      string        `json:"cert_status,omitempty" csv:"Cert Status,omitempty"`
	DeedStatus      string        `json:"deed_status,omitempty" csv:"Deed Status,omitempty"`
	AlternateKey    int           `json:"alternate_key,omitempty" csv:"Alternate Key,omitempty"`

	// Extra carries upload columns outside the closed schema. It is
	// presentation-only and never consulted by the workflow core.
	Extra map[string]string `json:"extra,omitempty" csv:"-"`
}

// SampleProperty is the canonical record synthesized when a stage is jumped
// to without real upstream data.
func SampleProperty() PropertyRecord {
	return PropertyRecord{
		AccountNumber:   "TEST-00-00-0000-00000",
		Status:          AccountStatusUnpaid,
		OwnerName:       "Test Owner",
		PropertyAddress: "123 Test Street, Test City, FL 12345",
		BalanceAmount:   1000.00,
		AssessedValue:   100000,
		TaxYear:         2023,
		RollYear:        2023,
		CertStatus:      "Pending",
		DeedStatus:      "-- None --",
		AlternateKey:    12345,
	}
}

// SampleProperties returns the fallback property dataset.
func SampleProperties() []PropertyRecord {
	return []PropertyRecord{SampleProperty()}
}
