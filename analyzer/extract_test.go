package analyzer

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText(Document{FileName: "policy.TXT", Data: []byte("\xEF\xBB\xBFPrivacy policy v2\n")})
	require.NoError(t, err)
	assert.Equal(t, "Privacy policy v2", text)
}

func TestExtractTextDOCX(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:r><w:t>Data Retention</w:t></w:r></w:p><w:p><w:r><w:t xml:space="preserve">Records are kept </w:t></w:r><w:r><w:t>for 7 years.</w:t></w:r></w:p>`)

	text, err := ExtractText(Document{FileName: "retention.docx", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Data Retention\nRecords are kept for 7 years.", text)
}

func TestExtractTextLegacyDOCScrapesPrintableRuns(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, []byte("Incident response plan")...)
	data = append(data, 0x00, 0x02, 0x03)
	data = append(data, []byte("1234")...)
	data = append(data, 0xFF)
	data = append(data, []byte("Access reviews quarterly")...)

	text, err := ExtractText(Document{FileName: "legacy.doc", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Incident response plan Access reviews quarterly", text)
}

func TestExtractTextCorruptPDFFallsBackToScraping(t *testing.T) {
	data := []byte("%PDF-1.4 garbage \x00\x01 Confidentiality obligations apply \x00")

	text, err := ExtractText(Document{FileName: "broken.pdf", Data: data})
	require.NoError(t, err)
	assert.Contains(t, text, "Confidentiality obligations apply")
}

func TestExtractTextErrors(t *testing.T) {
	_, err := ExtractText(Document{FileName: "tool.exe", Data: []byte("MZ")})
	assert.Error(t, err)

	_, err = ExtractText(Document{FileName: "empty.txt", Data: []byte("   ")})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported(Document{FileName: "a.pdf", ContentType: "application/pdf"}))
	assert.True(t, IsSupported(Document{FileName: "a.docx", ContentType: "application/octet-stream"}))
	assert.True(t, IsSupported(Document{FileName: "a.txt", ContentType: "text/plain; charset=utf-8"}))
	assert.False(t, IsSupported(Document{FileName: "a.exe", ContentType: "application/pdf"}))
	assert.False(t, IsSupported(Document{FileName: "a.pdf", ContentType: "image/png"}))
}
