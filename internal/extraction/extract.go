package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yungbote/coco-backend/internal/domain"
)

const (
	MimePDF          = "application/pdf"
	MimeDOCX         = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC          = "application/msword"
	MimePPTX         = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimePPT          = "application/vnd.ms-powerpoint"
	DefaultAudioMime = "audio/mpeg"

	// NoSlideText is returned for a presentation whose slides carry no text runs.
	NoSlideText = "No text found in presentation."
)

var (
	ErrDocumentRead     = errors.New("failed to read document")
	ErrPresentationRead = errors.New("failed to read presentation")
	ErrEmptyFile        = errors.New("empty file")
)

// UnsupportedTypeError rejects a file no extractor handles.
type UnsupportedTypeError struct {
	Name     string
	MimeType string
	Reason   string
}

func (e *UnsupportedTypeError) Error() string {
	mt := e.MimeType
	if mt == "" {
		mt = "unknown"
	}
	msg := fmt.Sprintf("unsupported file type: name=%s mime=%s", e.Name, mt)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ole2Magic opens the pre-2007 binary Office formats (.doc, .ppt).
var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func isLegacyOffice(data []byte) bool {
	return bytes.HasPrefix(data, ole2Magic)
}

// File is an uploaded blob with its declared name and MIME type.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Content is either extracted text or an inline binary payload for the model.
type Content struct {
	Text     string
	Data     []byte
	MimeType string
}

func (c Content) IsBinary() bool { return c.Data != nil }

// Base64 is the standard base64 encoding of the binary payload.
func (c Content) Base64() string {
	if c.Data == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(c.Data)
}

// Kind is the extractor a file is routed to.
type Kind string

const (
	KindAudio        Kind = "audio"
	KindPDF          Kind = "pdf"
	KindWord         Kind = "word"
	KindPresentation Kind = "presentation"
)

// ContentType maps an extractor kind onto the study-set provenance.
func (k Kind) ContentType() domain.ContentType {
	if k == KindAudio {
		return domain.ContentTypeAudio
	}
	return domain.ContentTypeDocument
}

// Extractor turns uploaded files into model-ready content.
type Extractor interface {
	Classify(f File) (Kind, error)
	Extract(ctx context.Context, f File) (Content, error)
}

type extractor struct{}

func New() Extractor { return &extractor{} }

// Classify dispatches by declared MIME type first, filename suffix second and
// sniffed bytes last.
func (e *extractor) Classify(f File) (Kind, error) {
	mt := normalizeMime(f.MimeType)
	if k, ok := kindFromMime(mt); ok {
		return k, nil
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if k, ok := kindFromExt(ext); ok {
		return k, nil
	}
	if mt == "" || mt == "application/octet-stream" {
		if k, ok := kindFromMime(sniff(f.Data)); ok {
			return k, nil
		}
	}
	return "", &UnsupportedTypeError{Name: f.Name, MimeType: f.MimeType}
}

func (e *extractor) Extract(ctx context.Context, f File) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	kind, err := e.Classify(f)
	if err != nil {
		return Content{}, err
	}
	if len(f.Data) == 0 {
		return Content{}, fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
	}
	if (kind == KindWord || kind == KindPresentation) && isLegacyOffice(f.Data) {
		return Content{}, &UnsupportedTypeError{
			Name:     f.Name,
			MimeType: f.MimeType,
			Reason:   "legacy binary Office format, save it as .docx or .pptx",
		}
	}
	switch kind {
	case KindAudio:
		return Content{Data: f.Data, MimeType: audioMime(f)}, nil
	case KindPDF:
		return Content{Data: f.Data, MimeType: MimePDF}, nil
	case KindWord:
		text, err := extractWord(f.Data)
		if err != nil {
			return Content{}, fmt.Errorf("%w: %s: %v", ErrDocumentRead, f.Name, err)
		}
		return Content{Text: text}, nil
	case KindPresentation:
		text, err := extractSlides(f.Data)
		if err != nil {
			return Content{}, fmt.Errorf("%w: %s: %v", ErrPresentationRead, f.Name, err)
		}
		return Content{Text: text}, nil
	default:
		return Content{}, &UnsupportedTypeError{Name: f.Name, MimeType: f.MimeType}
	}
}

func normalizeMime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return mt
}

func kindFromMime(mt string) (Kind, bool) {
	switch {
	case mt == "":
		return "", false
	case strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"):
		return KindAudio, true
	case mt == MimePDF:
		return KindPDF, true
	case mt == MimeDOCX, mt == MimeDOC:
		return KindWord, true
	case mt == MimePPTX, mt == MimePPT:
		return KindPresentation, true
	default:
		return "", false
	}
}

func kindFromExt(ext string) (Kind, bool) {
	switch ext {
	case ".pdf":
		return KindPDF, true
	case ".docx", ".doc":
		return KindWord, true
	case ".pptx", ".ppt":
		return KindPresentation, true
	case ".mp3", ".wav", ".m4a", ".aac", ".ogg", ".oga", ".flac", ".weba",
		".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".mpeg", ".mpg":
		return KindAudio, true
	default:
		return "", false
	}
}

func sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return normalizeMime(mimetype.Detect(data).String())
}

// audioMime keeps the declared media type, then falls back to the suffix and
// finally to a generic audio type.
func audioMime(f File) string {
	mt := normalizeMime(f.MimeType)
	if strings.HasPrefix(mt, "audio/") || strings.HasPrefix(mt, "video/") {
		return strings.TrimSpace(f.MimeType)
	}
	if byExt := normalizeMime(mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))); strings.HasPrefix(byExt, "audio/") || strings.HasPrefix(byExt, "video/") {
		return byExt
	}
	if sniffed := sniff(f.Data); strings.HasPrefix(sniffed, "audio/") || strings.HasPrefix(sniffed, "video/") {
		return sniffed
	}
	return DefaultAudioMime
}
