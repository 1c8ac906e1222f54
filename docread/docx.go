package docread

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads paragraph text from word/document.xml.
func extractDocx(path string) ([]string, error) {
	rc, closer, err := openZipPart(path, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer closer()

	decoder := xml.NewDecoder(rc)
	var lines []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					current.WriteByte(' ')
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if text := strings.TrimSpace(current.String()); text != "" {
						lines = append(lines, text)
					}
				}
			}
		}
	}

	return lines, nil
}

// openZipPart opens one named file inside a zip archive. The returned closer
// releases both the part and the archive.
func openZipPart(path, name string) (io.Reader, func(), error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("open %s: %w", name, err)
		}
		return rc, func() { rc.Close(); r.Close() }, nil
	}
	r.Close()
	return nil, nil, fmt.Errorf("%s not found in archive", name)
}
