// internal/domain/order/delivery.go
package order

import (
	"fmt"
	"regexp"
	"strings"
)

// DeliveryInfo is embedded in every order created by one checkout;
// the same record is copied into each per-seller order.
type DeliveryInfo struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Notes    string `json:"notes,omitempty"`
}

// ValidationError names the first offending delivery field so the form
// layer can highlight it inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order: delivery %s %s", e.Field, e.Reason)
}

// Permissive: digits plus common separators/grouping characters.
var phonePattern = regexp.MustCompile(`^[0-9\s\-\+\(\)]+$`)

// Validate checks the required delivery fields. It runs synchronously
// in the request path, before the checkout transaction is attempted.
func (d DeliveryInfo) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return &ValidationError{Field: "fullName", Reason: "is required"}
	}
	phone := strings.TrimSpace(d.Phone)
	if phone == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "phone", Reason: "is not a valid phone number"}
	}
	if strings.TrimSpace(d.Address) == "" {
		return &ValidationError{Field: "address", Reason: "is required"}
	}
	if strings.TrimSpace(d.City) == "" {
		return &ValidationError{Field: "city", Reason: "is required"}
	}
	return nil
}

func (d DeliveryInfo) normalize() DeliveryInfo {
	return DeliveryInfo{
		FullName: strings.TrimSpace(d.FullName),
		Phone:    strings.TrimSpace(d.Phone),
		Address:  strings.TrimSpace(d.Address),
		City:     strings.TrimSpace(d.City),
		Notes:    strings.TrimSpace(d.Notes),
	}
}
