package config

import (
	"os"
	"strings"
	"testing"
)

func TestEnvValidator_ValidateRequired(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		missingVar  string
	}{
		{
			name: "all required variables present",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123456:test-token",
				"API_ID":             "12345",
				"API_HASH":           "abcdef123456",
			},
			expectError: false,
		},
		{
			name: "missing TELEGRAM_BOT_TOKEN",
			envVars: map[string]string{
				"API_ID":   "12345",
				"API_HASH": "abcdef123456",
			},
			expectError: true,
			missingVar:  "TELEGRAM_BOT_TOKEN",
		},
		{
			name: "missing API_ID",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123456:test-token",
				"API_HASH":           "abcdef123456",
			},
			expectError: true,
			missingVar:  "API_ID",
		},
		{
			name: "missing API_HASH",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123456:test-token",
				"API_ID":             "12345",
			},
			expectError: true,
			missingVar:  "API_HASH",
		},
		{
			name:        "all variables missing",
			envVars:     map[string]string{},
			expectError: true,
			missingVar:  "TELEGRAM_BOT_TOKEN",
		},
		{
			name: "API_ID not an integer",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123456:test-token",
				"API_ID":             "abc",
				"API_HASH":           "abcdef123456",
			},
			expectError: true,
		},
	}

	validator := NewEnvValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			err := validator.ValidateRequired()

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
					return
				}
				if tt.missingVar != "" && !strings.Contains(err.Error(), tt.missingVar) {
					t.Errorf("expected error to mention %q, got %q", tt.missingVar, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestEnvValidator_GetAPICredentials(t *testing.T) {
	validator := NewEnvValidator()

	t.Run("valid credentials", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("API_ID", "424242")
		os.Setenv("API_HASH", "deadbeef")

		apiID, apiHash, err := validator.GetAPICredentials()
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if apiID != 424242 {
			t.Errorf("expected API ID 424242, got: %d", apiID)
		}
		if apiHash != "deadbeef" {
			t.Errorf("expected API hash 'deadbeef', got: %s", apiHash)
		}
	})

	t.Run("non-integer API_ID", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("API_ID", "forty-two")
		os.Setenv("API_HASH", "deadbeef")

		_, _, err := validator.GetAPICredentials()
		if err == nil {
			t.Fatal("expected error for non-integer API_ID")
		}
	})
}
