package service

import (
	"fmt"
	"unicode"

	"papertrade/configs"
	"papertrade/internal/domain"
)

// PasswordPolicy is the set of enumerated strength rules a new password must
// satisfy. Rules come from configuration and are injected into the
// CredentialService, never hard-coded at the call sites.
type PasswordPolicy struct {
	MinLength     int
	RequireLower  bool
	RequireUpper  bool
	RequireDigit  bool
	RequireSymbol bool
}

// NewPasswordPolicy builds a policy from configuration
func NewPasswordPolicy(cfg configs.PasswordPolicyConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:     cfg.MinLength,
		RequireLower:  cfg.RequireLower,
		RequireUpper:  cfg.RequireUpper,
		RequireDigit:  cfg.RequireDigit,
		RequireSymbol: cfg.RequireSymbol,
	}
}

// Validate checks a password against every rule of the policy. The returned
// error wraps ErrWeakPassword and names the first rule that failed.
func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("%w: must be at least %d characters", domain.ErrWeakPassword, p.MinLength)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	switch {
	case p.RequireLower && !hasLower:
		return fmt.Errorf("%w: must contain a lowercase letter", domain.ErrWeakPassword)
	case p.RequireUpper && !hasUpper:
		return fmt.Errorf("%w: must contain an uppercase letter", domain.ErrWeakPassword)
	case p.RequireDigit && !hasDigit:
		return fmt.Errorf("%w: must contain a digit", domain.ErrWeakPassword)
	case p.RequireSymbol && !hasSymbol:
		return fmt.Errorf("%w: must contain a symbol", domain.ErrWeakPassword)
	}

	return nil
}
