package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writers for the three OOXML containers the PDF-source strategies fall back
// to when no native converter is available. Each produces the minimal valid
// package for its format; consumers (Word, Excel, PowerPoint, LibreOffice)
// open them without repair prompts.

// ooxmlWriter accumulates package parts and writes the zip in one pass.
type ooxmlWriter struct {
	parts []ooxmlPart
}

type ooxmlPart struct {
	name string
	data []byte
}

func (w *ooxmlWriter) add(name, content string) {
	w.parts = append(w.parts, ooxmlPart{name: name, data: []byte(content)})
}

func (w *ooxmlWriter) addBinary(name string, data []byte) {
	w.parts = append(w.parts, ooxmlPart{name: name, data: data})
}

func (w *ooxmlWriter) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, p := range w.parts {
		f, err := zw.Create(p.name)
		if err != nil {
			zw.Close()
			return err
		}
		if _, err := f.Write(p.data); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// writeDocx creates a Word document with one paragraph per input line.
func writeDocx(path string, paragraphs []string) error {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(xmlEscape(p))
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	var w ooxmlWriter
	w.add("[Content_Types].xml", xmlHeader+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`+
		`</Types>`)
	w.add("_rels/.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`+
		`</Relationships>`)
	w.add("word/document.xml", xmlHeader+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+
		`<w:body>`+body.String()+`<w:sectPr/></w:body></w:document>`)
	return w.save(path)
}

// writeXlsx creates a workbook with a single sheet holding rows as inline
// strings. Cells that parse as plain numbers are written as numbers so
// spreadsheet consumers can compute over extracted tables.
func writeXlsx(path string, rows [][]string) error {
	var sheet strings.Builder
	sheet.WriteString(`<sheetData>`)
	for ri, row := range rows {
		fmt.Fprintf(&sheet, `<row r="%d">`, ri+1)
		for ci, cell := range row {
			ref := colName(ci) + fmt.Sprint(ri+1)
			if isPlainNumber(cell) {
				fmt.Fprintf(&sheet, `<c r="%s"><v>%s</v></c>`, ref, cell)
			} else {
				fmt.Fprintf(&sheet, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`,
					ref, xmlEscape(cell))
			}
		}
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData>`)

	var w ooxmlWriter
	w.add("[Content_Types].xml", xmlHeader+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>`+
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`+
		`</Types>`)
	w.add("_rels/.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>`+
		`</Relationships>`)
	w.add("xl/workbook.xml", xmlHeader+
		`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
		`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`)
	w.add("xl/_rels/workbook.xml.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>`+
		`</Relationships>`)
	w.add("xl/worksheets/sheet1.xml", xmlHeader+
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`+
		sheet.String()+`</worksheet>`)
	return w.save(path)
}

// colName converts a zero-based column index to its A1-style letters.
func colName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

func isPlainNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return s != "-" && s != "." && s != "-."
}

// pptxSlide is one slide of a generated presentation: a full-bleed page
// image, or plain text lines when no rasterizer was available.
type pptxSlide struct {
	ImagePath string
	Lines     []string
}

// EMUs for a 4:3 10×7.5 inch slide.
const (
	slideWidthEMU  = 9144000
	slideHeightEMU = 6858000
)

// writePptx creates a presentation with one slide per entry.
func writePptx(path string, slides []pptxSlide) error {
	if len(slides) == 0 {
		return fmt.Errorf("no slides to write")
	}

	var w ooxmlWriter
	var ctypes strings.Builder
	ctypes.WriteString(xmlHeader +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Default Extension="jpg" ContentType="image/jpeg"/>` +
		`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
		`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>` +
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := range slides {
		fmt.Fprintf(&ctypes,
			`<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`,
			i+1)
	}
	ctypes.WriteString(`</Types>`)
	w.add("[Content_Types].xml", ctypes.String())

	w.add("_rels/.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)

	var sldIds, presRels strings.Builder
	presRels.WriteString(xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rIdMaster" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range slides {
		fmt.Fprintf(&sldIds, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		fmt.Fprintf(&presRels,
			`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`,
			i+1, i+1)
	}
	presRels.WriteString(`</Relationships>`)

	w.add("ppt/presentation.xml", xmlHeader+
		`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rIdMaster"/></p:sldMasterIdLst>`+
		`<p:sldIdLst>`+sldIds.String()+`</p:sldIdLst>`+
		fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`,
			slideWidthEMU, slideHeightEMU, slideHeightEMU, slideWidthEMU)+
		`</p:presentation>`)
	w.add("ppt/_rels/presentation.xml.rels", presRels.String())

	w.add("ppt/slideMasters/slideMaster1.xml", xmlHeader+
		`<p:sldMaster xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
		`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>`+
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>`+
		`</p:sldMaster>`)
	w.add("ppt/slideMasters/_rels/slideMaster1.xml.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
		`</Relationships>`)
	w.add("ppt/slideLayouts/slideLayout1.xml", xmlHeader+
		`<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
		`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>`+
		`</p:sldLayout>`)
	w.add("ppt/slideLayouts/_rels/slideLayout1.xml.rels", xmlHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>`+
		`</Relationships>`)

	for i, slide := range slides {
		n := i + 1
		if slide.ImagePath != "" {
			data, err := os.ReadFile(slide.ImagePath)
			if err != nil {
				return fmt.Errorf("slide image: %w", err)
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(slide.ImagePath)), ".")
			if ext == "jpeg" {
				ext = "jpg"
			}
			media := fmt.Sprintf("ppt/media/image%d.%s", n, ext)
			w.addBinary(media, data)

			w.add(fmt.Sprintf("ppt/slides/slide%d.xml", n), imageSlideXML())
			w.add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), xmlHeader+
				`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
				`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
				fmt.Sprintf(`<Relationship Id="rIdImg" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image%d.%s"/>`, n, ext)+
				`</Relationships>`)
			continue
		}

		w.add(fmt.Sprintf("ppt/slides/slide%d.xml", n), textSlideXML(slide.Lines))
		w.add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), xmlHeader+
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
			`</Relationships>`)
	}

	return w.save(path)
}

func imageSlideXML() string {
	return xmlHeader +
		`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		`<p:pic><p:nvPicPr><p:cNvPr id="2" name="Page"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rIdImg"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
		`<p:spPr><a:xfrm><a:off x="0" y="0"/>` +
		fmt.Sprintf(`<a:ext cx="%d" cy="%d"/>`, slideWidthEMU, slideHeightEMU) +
		`</a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>` +
		`</p:spTree></p:cSld></p:sld>`
}

func textSlideXML(lines []string) string {
	var paras strings.Builder
	for _, line := range lines {
		paras.WriteString(`<a:p><a:r><a:t>`)
		paras.WriteString(xmlEscape(line))
		paras.WriteString(`</a:t></a:r></a:p>`)
	}
	if len(lines) == 0 {
		paras.WriteString(`<a:p/>`)
	}
	return xmlHeader +
		`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Content"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr/></p:nvSpPr>` +
		`<p:spPr><a:xfrm><a:off x="457200" y="457200"/>` +
		fmt.Sprintf(`<a:ext cx="%d" cy="%d"/>`, slideWidthEMU-914400, slideHeightEMU-914400) +
		`</a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/>` + paras.String() + `</p:txBody></p:sp>` +
		`</p:spTree></p:cSld></p:sld>`
}
