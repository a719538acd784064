package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	pinPattern   = regexp.MustCompile(`^[0-9]{6}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var ErrInvalidShipping = errors.New("invalid shipping details")

type ShippingDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	PIN     string `json:"pin"`
	Notes   string `json:"notes"`
}

// Validate mirrors the storefront shipping form rules: name, address, city
// and state required, 10-digit phone, 6-digit PIN, email optional but must
// be well-formed when present.
func (s ShippingDetails) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidShipping)
	}
	if !phonePattern.MatchString(s.Phone) {
		return fmt.Errorf("%w: valid 10-digit phone required", ErrInvalidShipping)
	}
	if s.Email != "" && !emailPattern.MatchString(s.Email) {
		return fmt.Errorf("%w: valid email required", ErrInvalidShipping)
	}
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidShipping)
	}
	if strings.TrimSpace(s.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidShipping)
	}
	if strings.TrimSpace(s.State) == "" {
		return fmt.Errorf("%w: state is required", ErrInvalidShipping)
	}
	if !pinPattern.MatchString(s.PIN) {
		return fmt.Errorf("%w: valid 6-digit PIN required", ErrInvalidShipping)
	}
	return nil
}

// AddressLine flattens the address the way the gateway notes expect it.
func (s ShippingDetails) AddressLine() string {
	return fmt.Sprintf("%s, %s, %s - %s", s.Address, s.City, s.State, s.PIN)
}
