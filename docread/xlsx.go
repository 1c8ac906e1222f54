package docread

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// extractXlsx reads every worksheet in order and renders each row as one
// tab-separated line. Shared strings are resolved; formulas contribute their
// cached values.
func extractXlsx(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	shared, err := readSharedStrings(&r.Reader)
	if err != nil {
		return nil, err
	}

	var sheetNames []string
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheetNames = append(sheetNames, f.Name)
		}
	}
	sort.Slice(sheetNames, func(i, j int) bool {
		return sheetNumber(sheetNames[i]) < sheetNumber(sheetNames[j])
	})

	var lines []string
	for _, name := range sheetNames {
		for _, f := range r.File {
			if f.Name != name {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			sheetLines, err := readSheet(rc, shared)
			rc.Close()
			if err != nil {
				return nil, err
			}
			lines = append(lines, sheetLines...)
		}
	}
	return lines, nil
}

func sheetNumber(name string) int {
	num := strings.TrimSuffix(strings.TrimPrefix(name, "xl/worksheets/sheet"), ".xml")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	var part io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "xl/sharedStrings.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open sharedStrings: %w", err)
			}
			part = rc
			break
		}
	}
	if part == nil {
		return nil, nil
	}
	defer part.Close()

	decoder := xml.NewDecoder(part)
	var strs []string
	var current strings.Builder
	depth := 0 // inside an <si>

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "si" {
				depth = 1
				current.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "si" && depth > 0 {
				depth = 0
				strs = append(strs, current.String())
			}
		}
	}
	return strs, nil
}

func readSheet(rc io.Reader, shared []string) ([]string, error) {
	decoder := xml.NewDecoder(rc)
	var lines []string
	var row []string
	var cellValue strings.Builder
	cellType := ""
	inValue := false
	inRow := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				row = row[:0]
			case "c":
				cellType = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v", "t":
				inValue = inRow
				cellValue.Reset()
			}
		case xml.CharData:
			if inValue {
				cellValue.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				if inValue {
					inValue = false
					row = append(row, resolveCell(cellValue.String(), cellType, shared))
				}
			case "row":
				if inRow {
					inRow = false
					if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
						lines = append(lines, strings.Join(row, "\t"))
					}
				}
			}
		}
	}
	return lines, nil
}

func resolveCell(value, cellType string, shared []string) string {
	if cellType == "s" {
		idx, err := strconv.Atoi(value)
		if err == nil && idx >= 0 && idx < len(shared) {
			return shared[idx]
		}
	}
	return value
}
