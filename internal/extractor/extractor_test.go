package extractor

import (
	"testing"
)

// ========== Extract dispatch ==========

func TestExtract_UnsupportedExtension(t *testing.T) {
	got, err := Extract("notes.txt", []byte("plain text"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("content = %q, want empty for unsupported extension", got)
	}
}

func TestExtract_NoExtension(t *testing.T) {
	got, err := Extract("README", []byte("data"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("content = %q, want empty", got)
	}
}

func TestExtract_CaseInsensitiveDispatch(t *testing.T) {
	// Uppercase .PDF must route to the PDF extractor, which rejects garbage.
	_, err := Extract("SCAN.PDF", []byte("not a pdf"), nil)
	if err == nil {
		t.Error("expected error for invalid PDF bytes")
	}
}

func TestExtract_MalformedDOCX(t *testing.T) {
	_, err := Extract("report.docx", []byte("not a zip archive"), nil)
	if err == nil {
		t.Error("expected error for invalid DOCX bytes")
	}
}

// ========== canRunOCR ==========

func TestCanRunOCR_NilConfig(t *testing.T) {
	if canRunOCR(nil) {
		t.Error("expected false for nil config")
	}
}

func TestCanRunOCR_EmptyConfig(t *testing.T) {
	cfg := &OCRConfig{}
	if canRunOCR(cfg) {
		t.Error("expected false when tesseract is unavailable")
	}
}

func TestCanRunOCR_TesseractAvailable(t *testing.T) {
	cfg := &OCRConfig{TesseractOk: true}
	if !canRunOCR(cfg) {
		t.Error("expected true when TesseractOk is true")
	}
}

// ========== pageFromImageName ==========

func TestPageFromImageName_StandardName(t *testing.T) {
	if got := pageFromImageName("upload_3_Im0.png"); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
}

func TestPageFromImageName_MultiDigitPage(t *testing.T) {
	if got := pageFromImageName("report_12_Img1.jpg"); got != 12 {
		t.Errorf("page = %d, want 12", got)
	}
}

func TestPageFromImageName_BaseWithUnderscores(t *testing.T) {
	// Only the trailing _<page>_<resource> pair counts.
	if got := pageFromImageName("my_scanned_doc_7_Im2.png"); got != 7 {
		t.Errorf("page = %d, want 7", got)
	}
}

func TestPageFromImageName_Unparseable(t *testing.T) {
	if got := pageFromImageName("random.png"); got != 1 {
		t.Errorf("page = %d, want fallback 1", got)
	}
}

// ========== sortImageNames ==========

func TestSortImageNames_NumericResourceOrder(t *testing.T) {
	// Lexicographic order would put Im10 between Im1 and Im2.
	names := []string{
		"doc_1_Im10.png",
		"doc_1_Im2.png",
		"doc_1_Im1.png",
	}
	sortImageNames(names)
	want := []string{"doc_1_Im1.png", "doc_1_Im2.png", "doc_1_Im10.png"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestSortImageNames_PageBeforeResource(t *testing.T) {
	names := []string{
		"doc_2_Im0.png",
		"doc_10_Im0.png",
		"doc_1_Im5.png",
		"doc_1_Im0.png",
	}
	sortImageNames(names)
	want := []string{"doc_1_Im0.png", "doc_1_Im5.png", "doc_2_Im0.png", "doc_10_Im0.png"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestResourceIndexFromImageName(t *testing.T) {
	if got := resourceIndexFromImageName("doc_3_Im12.png"); got != 12 {
		t.Errorf("index = %d, want 12", got)
	}
	if got := resourceIndexFromImageName("doc_3_Fm0.jpg"); got != 0 {
		t.Errorf("index = %d, want 0", got)
	}
	if got := resourceIndexFromImageName("weird.png"); got != 0 {
		t.Errorf("index = %d, want fallback 0", got)
	}
}

// ========== stripTags ==========

func TestStripTags_BasicXML(t *testing.T) {
	input := "<w:t>Hello</w:t> <w:t>World</w:t>"
	got := stripTags(input)
	if got != "Hello World" {
		t.Errorf("stripTags = %q, want 'Hello World'", got)
	}
}

func TestStripTags_NoTags(t *testing.T) {
	input := "Just plain text"
	got := stripTags(input)
	if got != input {
		t.Errorf("stripTags = %q, want %q", got, input)
	}
}

func TestStripTags_EmptyString(t *testing.T) {
	got := stripTags("")
	if got != "" {
		t.Errorf("stripTags of empty = %q, want empty", got)
	}
}

func TestStripTags_NestedTags(t *testing.T) {
	input := "<root><child>Content</child></root>"
	got := stripTags(input)
	if got != "Content" {
		t.Errorf("stripTags = %q, want 'Content'", got)
	}
}

func TestStripTags_SelfClosingTags(t *testing.T) {
	input := "Text<br/>More"
	got := stripTags(input)
	if got != "TextMore" {
		t.Errorf("stripTags = %q, want 'TextMore'", got)
	}
}

// ========== splitDOCXParagraphs ==========

func TestSplitDOCXParagraphs_TwoParagraphs(t *testing.T) {
	xml := `<w:body><w:p w:rsidR="0"><w:r><w:t>First para</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second para</w:t></w:r></w:p></w:body>`
	got := splitDOCXParagraphs(xml)
	if len(got) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %v", len(got), got)
	}
	if got[0] != "First para" {
		t.Errorf("para[0] = %q, want 'First para'", got[0])
	}
	if got[1] != "Second para" {
		t.Errorf("para[1] = %q, want 'Second para'", got[1])
	}
}

func TestSplitDOCXParagraphs_AttributesNotLeaked(t *testing.T) {
	// Attribute text in the split-open <w:p ...> tag must not appear as content.
	xml := `<w:p w:rsidRDefault="00AB12CD"><w:r><w:t>Body</w:t></w:r></w:p>`
	got := splitDOCXParagraphs(xml)
	if len(got) != 1 {
		t.Fatalf("expected 1 paragraph, got %d: %v", len(got), got)
	}
	if got[0] != "Body" {
		t.Errorf("para = %q, want 'Body'", got[0])
	}
}

func TestSplitDOCXParagraphs_EmptyParagraphsDropped(t *testing.T) {
	xml := `<w:p></w:p><w:p><w:r><w:t>Only one</w:t></w:r></w:p><w:p/>`
	got := splitDOCXParagraphs(xml)
	if len(got) != 1 || got[0] != "Only one" {
		t.Errorf("paragraphs = %v, want ['Only one']", got)
	}
}
