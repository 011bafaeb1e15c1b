package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

var logger = logger_i.NewLogger("Text Extraction")

func GetDocType(docPath string) DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return DOCX
	default:
		return ERR
	}
}

// ExtractText pulls plain text out of an uploaded file. This sits outside
// the matching core - the pipeline only ever sees the returned string.
func ExtractText(path string) (string, error) {
	switch GetDocType(path) {
	case PDF:
		return extractPDF(path)
	case DOCX:
		return extractDocxTxtRtf(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// cat.File reads a .odt, .docx, .rtf or plaintext file and returns the content as a string
func extractDocxTxtRtf(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "error", err)
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}
	return text, nil
}
