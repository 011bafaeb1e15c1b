package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDocType(t *testing.T) {
	cases := []struct {
		path string
		want DocType
	}{
		{"report.pdf", PDF},
		{"REPORT.PDF", PDF},
		{"essay.docx", DOCX},
		{"notes.txt", DOCX},
		{"paper.rtf", DOCX},
		{"thesis.odt", DOCX},
		{"image.png", ERR},
		{"archive.zip", ERR},
		{"noextension", ERR},
	}

	for _, c := range cases {
		if got := GetDocType(c.path); got != c.want {
			t.Errorf("GetDocType(%q) = %s, want %s", c.path, got, c.want)
		}
	}
}

func TestExtractText_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "submission.txt")
	content := "A plain text submission that needs no real parsing."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	text, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != content {
		t.Errorf("got %q, want %q", text, content)
	}
}

func TestExtractText_UnsupportedType(t *testing.T) {
	if _, err := ExtractText("whatever.exe"); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}
