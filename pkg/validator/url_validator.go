package validator

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxURLLength bounds the size of stored URLs
const MaxURLLength = 2048

var (
	validate = validator.New()

	// blockedSchemes would execute code instead of navigating
	blockedSchemes = map[string]bool{
		"javascript": true,
		"data":       true,
		"vbscript":   true,
	}
)

// ValidateURL checks that rawURL is a well-formed absolute URL with a host
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return &ValidationError{Field: "url", Message: "URL cannot be empty"}
	}

	if len(rawURL) > MaxURLLength {
		return &ValidationError{Field: "url", Message: "URL too long (max 2048 characters)"}
	}

	if err := validate.Var(rawURL, "url"); err != nil {
		return &ValidationError{Field: "url", Message: "Invalid URL format"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() {
		return &ValidationError{Field: "url", Message: "URL must be absolute"}
	}

	if blockedSchemes[strings.ToLower(parsed.Scheme)] {
		return &ValidationError{Field: "url", Message: "Unsupported URL scheme"}
	}

	if parsed.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must contain a host"}
	}

	return nil
}

// Identifier length bounds, matching the generated identifier range
const (
	MinIDLength = 4
	MaxIDLength = 32
)

// ValidateID checks a caller-chosen identifier: ASCII letters and digits only
func ValidateID(id string) error {
	if len(id) < MinIDLength || len(id) > MaxIDLength {
		return &ValidationError{Field: "id", Message: "Identifier must be 4 to 32 characters"}
	}

	if err := validate.Var(id, "alphanum"); err != nil {
		return &ValidationError{Field: "id", Message: "Identifier may contain only letters and digits"}
	}

	return nil
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
