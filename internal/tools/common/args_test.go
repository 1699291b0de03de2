package common

import "testing"

func TestRequiredString(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr bool
		want    string
	}{
		{
			name: "present",
			args: map[string]interface{}{"to": "a@example.com"},
			want: "a@example.com",
		},
		{
			name:    "missing",
			args:    map[string]interface{}{},
			wantErr: true,
		},
		{
			name:    "nil value",
			args:    map[string]interface{}{"to": nil},
			wantErr: true,
		},
		{
			name:    "empty",
			args:    map[string]interface{}{"to": ""},
			wantErr: true,
		},
		{
			name:    "wrong type",
			args:    map[string]interface{}{"to": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiredString(tt.args, "to")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	args := map[string]interface{}{"cc": "x@example.com", "bcc": "", "n": 4.0}

	if got := OptionalString(args, "cc", "def"); got != "x@example.com" {
		t.Errorf("cc = %q", got)
	}
	if got := OptionalString(args, "bcc", "def"); got != "def" {
		t.Errorf("empty value = %q, want default", got)
	}
	if got := OptionalString(args, "missing", "def"); got != "def" {
		t.Errorf("missing = %q, want default", got)
	}
	if got := OptionalString(args, "n", "def"); got != "def" {
		t.Errorf("wrong type = %q, want default", got)
	}
}

func TestOptionalInt(t *testing.T) {
	args := map[string]interface{}{"max_results": 25.0, "zero": 0.0, "neg": -3.0, "s": "10"}

	if got := OptionalInt(args, "max_results", 10); got != 25 {
		t.Errorf("max_results = %d, want 25", got)
	}
	if got := OptionalInt(args, "zero", 10); got != 10 {
		t.Errorf("zero = %d, want default", got)
	}
	if got := OptionalInt(args, "neg", 10); got != 10 {
		t.Errorf("negative = %d, want default", got)
	}
	if got := OptionalInt(args, "s", 10); got != 10 {
		t.Errorf("string value = %d, want default", got)
	}
	if got := OptionalInt(args, "missing", 10); got != 10 {
		t.Errorf("missing = %d, want default", got)
	}
}

func TestOptionalBool(t *testing.T) {
	args := map[string]interface{}{"html": true, "plain": false, "s": "true"}

	if !OptionalBool(args, "html", false) {
		t.Error("html = false, want true")
	}
	if OptionalBool(args, "plain", true) {
		t.Error("plain = true, want false")
	}
	if !OptionalBool(args, "s", true) {
		t.Error("wrong type should fall back to default")
	}
	if OptionalBool(args, "missing", false) {
		t.Error("missing = true, want default")
	}
}
