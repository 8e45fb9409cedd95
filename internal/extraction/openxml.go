package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Upper bound for a single decompressed XML part.
const maxPartBytes = 64 << 20

func openZip(data []byte) (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, maxPartBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxPartBytes {
		return nil, fmt.Errorf("part %s exceeds %d bytes", f.Name, maxPartBytes)
	}
	return b, nil
}

// ------------------------
// Word (word/document.xml)
// ------------------------

// extractWord reads word/document.xml and returns its text in document
// order: one line per body paragraph and one line per table row, with cells
// joined by " | ".
func extractWord(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("word/document.xml missing")
	}
	raw, err := readZipFile(part)
	if err != nil {
		return "", err
	}
	text, err := wordText(raw)
	if err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// wordText walks every <w:t> wherever it is nested (hyperlinks, content
// controls, tracked insertions). Tables nested inside a cell are flattened
// into that cell. mc:Fallback duplicates the preferred rendering and is skipped.
func wordText(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		lines []string
		para  strings.Builder
		cell  []string
		row   []string
		depth int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "t":
				var v string
				if err := dec.DecodeElement(&v, &se); err != nil {
					return "", err
				}
				para.WriteString(v)
			case "tab":
				para.WriteString(" ")
			case "tbl":
				depth++
			case "Fallback":
				if err := dec.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "p":
				text := para.String()
				para.Reset()
				if depth == 0 {
					lines = append(lines, strings.TrimRight(text, " "))
				} else if s := strings.TrimSpace(text); s != "" {
					cell = append(cell, s)
				}
			case "tc":
				if depth == 1 {
					row = append(row, strings.Join(cell, " "))
					cell = nil
				}
			case "tr":
				if depth == 1 {
					lines = append(lines, strings.Join(row, " | "))
					row = nil
				}
			case "tbl":
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// ------------------------
// Slides (ppt/slides/slideN.xml)
// ------------------------

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type slidePart struct {
	index int
	file  *zip.File
}

// extractSlides concatenates the text runs of every slide in slide order.
// Slide parts are ordered by their numeric index so slide10 follows slide2.
func extractSlides(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}
	slides := make([]slidePart, 0, 16)
	for _, f := range zr.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{index: n, file: f})
	}
	sort.SliceStable(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	blocks := make([]string, 0, len(slides))
	for _, s := range slides {
		raw, err := readZipFile(s.file)
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(slideText(raw))
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Slide %d]\n%s", s.index, text))
	}
	if len(blocks) == 0 {
		return NoSlideText, nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// slideText gathers <a:t> runs; runs within a paragraph are concatenated and
// paragraphs are joined with spaces.
func slideText(raw []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var out, para strings.Builder
	flush := func() {
		s := strings.TrimSpace(para.String())
		para.Reset()
		if s == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s)
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local != "t" {
				continue
			}
			var v string
			if err := dec.DecodeElement(&v, &se); err == nil {
				para.WriteString(v)
			}
		case xml.EndElement:
			if se.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return out.String()
}
