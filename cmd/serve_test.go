package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestServeCommandFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag string
		want string
	}{
		{"debug", "false"},
		{"sse", ""},
		{"metrics-enabled", "true"},
		{"metrics-addr", ":9090"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag %q is not defined", tt.flag)
			}
			if f.DefValue != tt.want {
				t.Errorf("flag %q default = %q, want %q", tt.flag, f.DefValue, tt.want)
			}
		})
	}
}

func TestVersionCommandOutput(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "mcpgmail version 1.2.3") {
		t.Errorf("version output = %q, want it to contain the version", out.String())
	}
}

func TestAuthCommandRequiresCode(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cmd := newAuthCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("\n"))

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error when no authorization code is provided")
	}
	if !strings.Contains(err.Error(), "no authorization code") {
		t.Errorf("err = %v, want missing code error", err)
	}
	if !strings.Contains(out.String(), "https://") {
		t.Errorf("output = %q, want a consent URL", out.String())
	}
}
