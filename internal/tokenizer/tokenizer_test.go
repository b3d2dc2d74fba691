package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenizeKeepsYearsDropsOtherDigits(t *testing.T) {
	got := Tokenize("Section 213, decided in 2022 (ref no 7)")
	want := []string{"section", "213", "decided", "in", "2022", "ref", "no"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeLowercasesAndStripsPunctuation(t *testing.T) {
	got := Tokenize("Deposit-Protection: TDS/DPS!")
	want := []string{"deposit-protection", "tds", "dps"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestCountMatchesWordCount(t *testing.T) {
	text := "the quick brown fox jumps"
	if Count(text) != 5 {
		t.Fatalf("Count() = %d, want 5", Count(text))
	}
}
