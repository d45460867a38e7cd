package parser

import (
	"testing"

	"github.com/examtools/examconv/internal/normalize"
)

func TestTextParser_SkipsBlankLines(t *testing.T) {
	p := &TextParser{}
	sig, err := p.Parse([]byte("Q1: Sample?\nA) One\n\nB) Two\n"), "sample.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.ContentType != "txt" {
		t.Errorf("expected content type txt, got %s", sig.ContentType)
	}
	if len(sig.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(sig.Units))
	}
	if sig.Units[0].Text != "Q1: Sample?" {
		t.Errorf("expected first unit %q, got %q", "Q1: Sample?", sig.Units[0].Text)
	}
	for i, u := range sig.Units {
		if u.Index != i {
			t.Errorf("unit %d: expected dense index %d, got %d", i, i, u.Index)
		}
	}
}

func TestTextParser_UTF8WithBOM(t *testing.T) {
	p := &TextParser{}
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hello world")...)
	sig, err := p.Parse(content, "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.Units) != 1 || sig.Units[0].Text != "Hello world" {
		t.Fatalf("unexpected units: %+v", sig.Units)
	}
	if len(sig.Warnings) != 0 {
		t.Errorf("expected no warnings for clean UTF-8, got %v", sig.Warnings)
	}
}

func TestTextParser_LegacyEncodingFallback(t *testing.T) {
	p := &TextParser{}
	// 0x92 is the cp1252 right single quote; invalid as UTF-8.
	sig, err := p.Parse([]byte("the model\x92s complexity"), "legacy.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(sig.Units))
	}
	if sig.Units[0].Text != "the model’s complexity" {
		t.Errorf("expected cp1252 decode, got %q", sig.Units[0].Text)
	}
	found := false
	for _, w := range sig.Warnings {
		if w == normalize.EncodingWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected encoding warning, got %v", sig.Warnings)
	}
}

func TestTextParser_CRLFAndWhitespaceLines(t *testing.T) {
	p := &TextParser{}
	sig, err := p.Parse([]byte("one\r\n   \r\ntwo\rthree"), "crlf.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(sig.Units) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(sig.Units))
	}
	for i, w := range want {
		if sig.Units[i].Text != w {
			t.Errorf("unit %d: expected %q, got %q", i, w, sig.Units[i].Text)
		}
	}
}

func TestDecodeTextBytes_LatinFallbackFlagsArtifacts(t *testing.T) {
	// A long run of invalid bytes keeps the replacement ratio above 1% for
	// UTF-8 but decodes cleanly as a single-byte encoding.
	content := []byte("caf\xe9 menu")
	decoded, artifacts := decodeTextBytes(content)
	if decoded != "café menu" {
		t.Errorf("expected cp1252 decode, got %q", decoded)
	}
	if !artifacts {
		t.Errorf("expected artifacts flag for non-UTF-8 input")
	}
}
