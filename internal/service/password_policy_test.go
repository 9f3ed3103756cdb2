package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papertrade/internal/domain"
)

func TestPasswordPolicyValidate(t *testing.T) {
	full := PasswordPolicy{
		MinLength:     8,
		RequireLower:  true,
		RequireUpper:  true,
		RequireDigit:  true,
		RequireSymbol: true,
	}

	testCases := []struct {
		name     string
		policy   PasswordPolicy
		password string
		wantWeak bool
	}{
		{"satisfies all rules", full, "Str0ng!pass", false},
		{"too short", full, "S0r!t", true},
		{"missing lowercase", full, "STR0NG!PASS", true},
		{"missing uppercase", full, "str0ng!pass", true},
		{"missing digit", full, "Strong!pass", true},
		{"missing symbol", full, "Str0ngpass", true},
		{"length only policy", PasswordPolicy{MinLength: 4}, "aaaa", false},
		{"rules switched off", PasswordPolicy{MinLength: 8}, "lowercaseonly", false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.password)
			if tt.wantWeak {
				assert.ErrorIs(t, err, domain.ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
