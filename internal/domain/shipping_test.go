package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() ShippingDetails {
	return ShippingDetails{
		Name:    "Jane Doe",
		Phone:   "9876543210",
		Email:   "jane@example.com",
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		PIN:     "560001",
	}
}

func TestShippingValidate(t *testing.T) {
	require.NoError(t, validDetails().Validate())

	tests := []struct {
		name   string
		mutate func(*ShippingDetails)
	}{
		{"missing name", func(s *ShippingDetails) { s.Name = "  " }},
		{"short phone", func(s *ShippingDetails) { s.Phone = "12345" }},
		{"phone with letters", func(s *ShippingDetails) { s.Phone = "98765abcde" }},
		{"bad email", func(s *ShippingDetails) { s.Email = "not-an-email" }},
		{"missing address", func(s *ShippingDetails) { s.Address = "" }},
		{"missing city", func(s *ShippingDetails) { s.City = "" }},
		{"missing state", func(s *ShippingDetails) { s.State = "" }},
		{"short pin", func(s *ShippingDetails) { s.PIN = "5600" }},
		{"pin with letters", func(s *ShippingDetails) { s.PIN = "56000a" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validDetails()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidShipping)
		})
	}
}

func TestShippingValidate_EmailOptional(t *testing.T) {
	s := validDetails()
	s.Email = ""
	assert.NoError(t, s.Validate())
}

func TestAddressLine(t *testing.T) {
	s := validDetails()
	assert.Equal(t, "12 MG Road, Bengaluru, Karnataka - 560001", s.AddressLine())
}
