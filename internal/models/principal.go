package models

// Principal is the verified identity asserted by the upstream identity provider.
// Every field except Subject may be empty when the provider omits it.
// Email is stored as asserted; the provider owns its format.
type Principal struct {
	Subject     string `validate:"required,max=255"`
	Name        string `validate:"max=255"`
	Email       string `validate:"max=255"`
	PhoneNumber string `validate:"max=50"`
	Country     string `validate:"max=100"`
}
