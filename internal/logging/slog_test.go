package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestToolAttr(t *testing.T) {
	attr := Tool("search_emails")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "search_emails" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "search_emails")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// nil errors become an empty group that slog omits from output
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{
			name:  "empty email",
			email: "",
			want:  "",
		},
		{
			name:  "valid email produces prefixed hash",
			email: "user@example.com",
			want:  "user:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if tt.want == "" {
				if got != "" {
					t.Errorf("AnonymizeEmail(%q) = %q, want empty", tt.email, got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("AnonymizeEmail(%q) = %q, want prefix %q", tt.email, got, tt.want)
			}
			if strings.Contains(got, "example.com") {
				t.Errorf("AnonymizeEmail leaked the domain: %q", got)
			}
		})
	}
}

func TestAnonymizeEmailStable(t *testing.T) {
	a := AnonymizeEmail("user@example.com")
	b := AnonymizeEmail("user@example.com")
	if a != b {
		t.Errorf("AnonymizeEmail not stable: %q != %q", a, b)
	}
	c := AnonymizeEmail("other@example.com")
	if a == c {
		t.Error("AnonymizeEmail produced identical hashes for different emails")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q, want <empty>", got)
	}
	got := SanitizeToken("ya29.super-secret")
	if strings.Contains(got, "ya29") {
		t.Errorf("SanitizeToken leaked token content: %q", got)
	}
	if got != "[token:17 chars]" {
		t.Errorf("SanitizeToken = %q, want [token:17 chars]", got)
	}
}

func TestUserHashAttr(t *testing.T) {
	attr := UserHash("user@example.com")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if got := attr.Value.String(); got != AnonymizeEmail("user@example.com") {
		t.Errorf("UserHash value = %q, want the anonymized email", got)
	}
}
