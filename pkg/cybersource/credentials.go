package cybersource

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environment selects which processor host requests are sent to.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

const (
	SandboxHost    = "apitest.cybersource.com"
	ProductionHost = "api.cybersource.com"
)

// Host returns the fixed API host for the environment. Anything other than
// production resolves to the sandbox host.
func (e Environment) Host() string {
	if e == EnvironmentProduction {
		return ProductionHost
	}
	return SandboxHost
}

// Credentials identify the merchant to the processor. SecretKey is the
// base64-encoded shared secret issued alongside KeyID.
type Credentials struct {
	MerchantID  string      `validate:"required"`
	KeyID       string      `validate:"required"`
	SecretKey   string      `validate:"required"`
	Environment Environment `validate:"omitempty,oneof=sandbox production"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace and defaults the environment to sandbox.
func (c Credentials) Normalize() Credentials {
	c.MerchantID = strings.TrimSpace(c.MerchantID)
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	if c.Environment == "" {
		c.Environment = EnvironmentSandbox
	}
	return c
}

// Validate reports which credential fields are missing or malformed.
func (c Credentials) Validate() error {
	return validate.Struct(c)
}

// IsConfigured reports whether merchant id, key id and secret are all present.
func (c Credentials) IsConfigured() bool {
	return c.MerchantID != "" && c.KeyID != "" && c.SecretKey != ""
}
