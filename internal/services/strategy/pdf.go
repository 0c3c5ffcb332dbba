package strategy

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/brandpulse/brandpulse/internal/domain"
)

// ExtractPDFText pulls plain text out of an uploaded PDF brief. A PDF with
// no extractable text (scanned images, empty file) yields ErrBriefUnreadable.
func ExtractPDFText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", domain.ErrBriefUnreadable("not a valid PDF file").WithCause(err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.ErrBriefUnreadable("text extraction failed").WithCause(err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", domain.ErrBriefUnreadable("reading extracted text failed").WithCause(err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", domain.ErrBriefUnreadable("no extractable text found in PDF")
	}

	return text, nil
}
