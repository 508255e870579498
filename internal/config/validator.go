package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-mcp/internal/components"
)

// Validator collects every configuration problem before the server starts
type Validator struct {
	config *ConfigData
	errors []string
}

// NewValidator creates a new validator instance
func NewValidator(cfg *ConfigData) *Validator {
	return &Validator{
		config: cfg,
		errors: make([]string, 0),
	}
}

func (v *Validator) validateComponents() bool {
	_, invalid, err := components.ValidateComponents(v.config.EnabledComponents)
	if err != nil {
		v.errors = append(v.errors, err.Error())
		return false
	}
	if len(invalid) > 0 {
		v.errors = append(v.errors, fmt.Sprintf("invalid components: %s", strings.Join(invalid, ", ")))
		return false
	}
	return true
}

func (v *Validator) validateServer() bool {
	valid := true

	switch v.config.Transport {
	case TransportStdio, TransportSSE, TransportStreamableHTTP:
	default:
		v.errors = append(v.errors, fmt.Sprintf("invalid transport %q: must be stdio, sse or streamable-http", v.config.Transport))
		valid = false
	}

	switch v.config.AccessLevel {
	case AccessLevelReadOnly, AccessLevelReadWrite, AccessLevelAdmin:
	default:
		v.errors = append(v.errors, fmt.Sprintf("invalid access level %q: must be readonly, readwrite or admin", v.config.AccessLevel))
		valid = false
	}

	switch v.config.ErrorMode {
	case ErrorModeFamily, ErrorModeTagged:
	default:
		v.errors = append(v.errors, fmt.Sprintf("invalid error mode %q: must be family or tagged", v.config.ErrorMode))
		valid = false
	}

	if v.config.Transport != TransportStdio && (v.config.Port <= 0 || v.config.Port > 65535) {
		v.errors = append(v.errors, fmt.Sprintf("invalid port %d", v.config.Port))
		valid = false
	}

	if v.config.Timeout <= 0 {
		v.errors = append(v.errors, "timeout must be positive")
		valid = false
	}

	return valid
}

func (v *Validator) validateAuth() bool {
	if err := v.config.Auth.ValidateConfig(); err != nil {
		v.errors = append(v.errors, err.Error())
		return false
	}
	return true
}

// Validate runs all validation checks
func (v *Validator) Validate() bool {
	validComponents := v.validateComponents()
	validServer := v.validateServer()
	validAuth := v.validateAuth()

	return validComponents && validServer && validAuth
}

// GetErrors returns all errors found during validation
func (v *Validator) GetErrors() []string {
	return v.errors
}

// PrintErrors prints all validation errors to stderr
func (v *Validator) PrintErrors() {
	for _, err := range v.errors {
		fmt.Fprintln(os.Stderr, err)
	}
}
