package errors

import (
	"testing"
)

func TestValidateResourceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "cp1", false},
		{"dashed", "prod-control-plane", false},
		{"dotted", "prod.workers", false},
		{"uppercase is still an identity", "Worker", false},

		{"empty", "", true},
		{"blank", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceName("TalosWorker", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateResourceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidResource) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidResource)
			}
		})
	}
}

func TestNameWarnings(t *testing.T) {
	if got := NameWarnings("cp1"); len(got) != 0 {
		t.Errorf("NameWarnings(cp1) = %v, want none", got)
	}
	if got := NameWarnings("Not_Valid"); len(got) == 0 {
		t.Error("NameWarnings(Not_Valid) should report a DNS-1123 violation")
	}
	if got := NameWarnings(""); got != nil {
		t.Errorf("NameWarnings(\"\") = %v, want nil", got)
	}
}
