package docproc

import (
	"strings"
	"testing"
)

func TestCleanRedactsPII(t *testing.T) {
	text := "Contact the applicant at jane.doe@example.com or 07911 123456, SW1A 1AA."
	got := Clean(text)

	if strings.Contains(got, "jane.doe@example.com") {
		t.Fatal("expected email to be redacted")
	}
	if !strings.Contains(got, "[EMAIL]") {
		t.Fatalf("expected [EMAIL] placeholder, got %q", got)
	}
	if !strings.Contains(got, "[POSTCODE]") {
		t.Fatalf("expected [POSTCODE] placeholder, got %q", got)
	}
	if !strings.Contains(got, "[PHONE]") {
		t.Fatalf("expected [PHONE] placeholder, got %q", got)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	got := Clean("line one\n\n\n   line   two")
	if strings.Contains(got, "  ") {
		t.Fatalf("expected whitespace to be collapsed, got %q", got)
	}
}

func TestCleanFixesLigatures(t *testing.T) {
	got := Clean("the tribunal found that the ﬁling was deﬁcient")
	if strings.Contains(got, "ﬁ") {
		t.Fatalf("expected ligature to be repaired, got %q", got)
	}
	if !strings.Contains(got, "filing") {
		t.Fatalf("expected repaired 'filing', got %q", got)
	}
}
