package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	defaultMinSecretLength     = 12
	defaultMinCharacterClasses = 3
	defaultMinZxcvbnScore      = 3
)

// GenerateTemporarySecret returns a base64 URL-safe random string using the
// specified number of random bytes. Used as the one-time credential secret
// handed to the identity provider during staff provisioning.
func GenerateTemporarySecret(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SecretValidationError represents a single secret policy violation.
type SecretValidationError struct {
	Code    string
	Message string
}

// Error implements error for SecretValidationError.
func (e *SecretValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// SecretRule validates a secret according to a specific policy rule.
type SecretRule interface {
	Validate(secret string) error
}

// SecretRuleFunc adapts a function to be used as a SecretRule.
type SecretRuleFunc func(secret string) error

// Validate executes the underlying rule function.
func (f SecretRuleFunc) Validate(secret string) error {
	return f(secret)
}

// SecretPolicy applies a sequence of secret rules.
type SecretPolicy struct {
	rules []SecretRule
}

// NewSecretPolicy constructs a policy with the provided rules.
func NewSecretPolicy(rules ...SecretRule) *SecretPolicy {
	copied := make([]SecretRule, len(rules))
	copy(copied, rules)
	return &SecretPolicy{rules: copied}
}

// DefaultSecretPolicy returns the built-in policy enforcing length, character
// class, and zxcvbn strength checks on generated credentials.
func DefaultSecretPolicy() *SecretPolicy {
	return NewSecretPolicy(
		MinLengthRule(defaultMinSecretLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
		RequireStrengthRule(defaultMinZxcvbnScore),
	)
}

// Validate executes all rules and returns the first encountered violation.
func (p *SecretPolicy) Validate(secret string) error {
	if p == nil {
		return fmt.Errorf("secret policy not configured")
	}
	for _, rule := range p.rules {
		if err := rule.Validate(secret); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the secret has at least min characters.
func MinLengthRule(min int) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if len([]rune(secret)) < min {
			return &SecretValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("secret must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the secret contains characters from at
// least min distinct classes (upper, lower, digit, symbol).
func RequireCharacterClassesRule(min int) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if min <= 0 {
			return nil
		}

		var (
			hasUpper  bool
			hasLower  bool
			hasDigit  bool
			hasSymbol bool
		)

		for _, r := range secret {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				hasSymbol = true
			}
		}

		classes := 0
		if hasUpper {
			classes++
		}
		if hasLower {
			classes++
		}
		if hasDigit {
			classes++
		}
		if hasSymbol {
			classes++
		}

		if classes >= min {
			return nil
		}

		return &SecretValidationError{
			Code:    "character_classes",
			Message: fmt.Sprintf("secret must include at least %d character types", min),
		}
	})
}

// RequireStrengthRule enforces a minimum zxcvbn score to reject weak secrets.
func RequireStrengthRule(minScore int, userInputs ...string) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(secret, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &SecretValidationError{
			Code:    "weak_secret",
			Message: "secret is too weak; choose a more complex value",
		}
	})
}
