package extract

import "testing"

func TestExtractTextPassesThroughUTF8(t *testing.T) {
	extractor := New()

	text, err := extractor.ExtractText("notes.txt", []byte("  Diploma of Alice Smith\n"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Diploma of Alice Smith" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextYieldsNothingForBinary(t *testing.T) {
	extractor := New()

	text, err := extractor.ExtractText("photo.png", []byte{0x89, 0x50, 0x4e, 0x47, 0xff, 0xfe})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Fatalf("binary content must yield no text, got %q", text)
	}
}

func TestExtractTextRejectsMalformedPDF(t *testing.T) {
	extractor := New()

	if _, err := extractor.ExtractText("doc.pdf", []byte("not a pdf")); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}
