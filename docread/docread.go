// Package docread extracts plain text from OOXML office documents. It exists
// for the conversion fallbacks that rebuild a PDF from document content when
// no native converter is installed, so it deliberately reads only what those
// fallbacks need: textual content in document order.
package docread

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported (or recognized-but-rejected) document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
	FormatPptx Format = "pptx"
)

// Document is the extracted content: one entry per paragraph, table row or
// slide line, in document order.
type Document struct {
	Format Format
	Lines  []string
}

// LegacyFormatError is returned for the pre-OOXML binary formats (.doc,
// .xls, .ppt), which this package cannot parse.
type LegacyFormatError struct {
	Ext string
}

func (e *LegacyFormatError) Error() string {
	return fmt.Sprintf("docread: legacy binary format .%s is not readable; convert it with LibreOffice or Office", e.Ext)
}

// UnknownFormatError is returned for extensions this package does not handle.
type UnknownFormatError struct {
	Ext string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("docread: unrecognized document format .%s", e.Ext)
}

// Extract reads the document at path, dispatching on its extension.
func Extract(path string) (*Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "docx":
		lines, err := extractDocx(path)
		if err != nil {
			return nil, err
		}
		return &Document{Format: FormatDocx, Lines: lines}, nil
	case "xlsx":
		lines, err := extractXlsx(path)
		if err != nil {
			return nil, err
		}
		return &Document{Format: FormatXlsx, Lines: lines}, nil
	case "pptx":
		lines, err := extractPptx(path)
		if err != nil {
			return nil, err
		}
		return &Document{Format: FormatPptx, Lines: lines}, nil
	case "doc", "xls", "ppt":
		return nil, &LegacyFormatError{Ext: ext}
	default:
		return nil, &UnknownFormatError{Ext: ext}
	}
}
