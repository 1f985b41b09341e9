package analyzer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// maxExtractedChars bounds the text forwarded to the fallback provider.
const maxExtractedChars = 60000

var (
	printableRun = regexp.MustCompile(`[\x20-\x7E]{4,}`)
	hasLetter    = regexp.MustCompile(`[A-Za-z]{2,}`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ErrNoText is returned when no readable text could be recovered.
var ErrNoText = errors.New("no readable text could be extracted from the document")

// ExtractText recovers plain text from a document for the text-only
// provider. PDF and DOCX go through real parsers; legacy DOC and
// unparseable PDFs fall back to scraping printable ASCII runs.
func ExtractText(doc Document) (string, error) {
	var (
		text string
		err  error
	)
	switch doc.Ext() {
	case ".txt":
		text = decodePlainText(doc.Data)
	case ".pdf":
		text, err = extractPDF(doc.Data)
		if err != nil || strings.TrimSpace(text) == "" {
			log.Warn().Err(err).Str("file", doc.FileName).Msg("[ExtractText] PDF parser yielded no text, scraping printable runs")
			text = scrapePrintable(doc.Data)
		}
	case ".docx":
		text, err = extractDOCX(doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("file", doc.FileName).Msg("[ExtractText] DOCX parse failed, scraping printable runs")
			text = scrapePrintable(doc.Data)
		}
	case ".doc":
		text = scrapePrintable(doc.Data)
	default:
		return "", fmt.Errorf("unsupported file extension %q", doc.Ext())
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	if len(text) > maxExtractedChars {
		text = truncateUTF8(text, maxExtractedChars)
	}
	return text, nil
}

func decodePlainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return string(b), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()
		return collectWordText(rc)
	}
	return "", errors.New("docx has no word/document.xml")
}

// collectWordText joins the <w:t> runs of a WordprocessingML body,
// one line per paragraph.
func collectWordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// scrapePrintable is the last-resort extractor for binary formats.
func scrapePrintable(data []byte) string {
	runs := printableRun.FindAll(data, -1)
	kept := make([]string, 0, len(runs))
	for _, run := range runs {
		if hasLetter.Match(run) {
			kept = append(kept, string(run))
		}
	}
	return whitespace.ReplaceAllString(strings.Join(kept, " "), " ")
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
