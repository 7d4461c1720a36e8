package domain

import (
	"strings"
	"time"
)

const MaxVendorNameLen = 120

// Tradeline is a vendor credit account a user reports on.
type Tradeline struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	VendorName  string     `json:"vendor_name" db:"vendor_name"`
	CreditLimit float64    `json:"credit_limit" db:"credit_limit"`
	ReportsTo   []string   `json:"reports_to" db:"reports_to"`
	OpenedAt    *time.Time `json:"opened_at,omitempty" db:"opened_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

func NewTradeline(userID, vendor string, limit float64, reportsTo []string, openedAt *time.Time) (*Tradeline, error) {
	vendor = strings.TrimSpace(vendor)
	if userID == "" || vendor == "" || len(vendor) > MaxVendorNameLen || limit < 0 {
		return nil, ErrInvalidTradeline
	}

	bureaus := make([]string, 0, len(reportsTo))
	for _, b := range reportsTo {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			bureaus = append(bureaus, b)
		}
	}

	return &Tradeline{
		UserID:      userID,
		VendorName:  vendor,
		CreditLimit: limit,
		ReportsTo:   bureaus,
		OpenedAt:    openedAt,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
