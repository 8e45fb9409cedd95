package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/coco-backend/internal/domain"
)

// buildZip writes name/body pairs in the given order.
func buildZip(t *testing.T, pairs ...string) []byte {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("buildZip: odd number of arguments")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i < len(pairs); i += 2 {
		name, body := pairs[i], pairs[i+1]
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func slideXML(texts ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	for _, t := range texts {
		b.WriteString(`<p:sp><p:txBody><a:p><a:r><a:t>` + t + `</a:t></a:r></a:p></p:txBody></p:sp>`)
	}
	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return b.String()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Cell </w:t></w:r><w:r><w:t>Biology</w:t></w:r></w:p>
<w:p><w:r><w:t>Mitochondria produce ATP.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtractBinaryKinds(t *testing.T) {
	ex := New()
	ctx := context.Background()
	cases := []struct {
		name     string
		file     File
		wantMime string
	}{
		{name: "audio passthrough", file: File{Name: "lecture.m4a", MimeType: "audio/x-m4a", Data: []byte{1, 2, 3}}, wantMime: "audio/x-m4a"},
		{name: "video passthrough", file: File{Name: "talk.mp4", MimeType: "video/mp4", Data: []byte{1}}, wantMime: "video/mp4"},
		{name: "pdf by mime", file: File{Name: "notes", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}, wantMime: MimePDF},
		{name: "pdf by suffix forces mime", file: File{Name: "notes.PDF", MimeType: "application/octet-stream", Data: []byte("%PDF-1.4")}, wantMime: MimePDF},
		{name: "audio suffix without mime", file: File{Name: "rec.mp3", Data: []byte{0xff, 0xfb, 0x90}}, wantMime: "audio/mpeg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ex.Extract(ctx, tc.file)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !got.IsBinary() {
				t.Fatalf("Extract: want binary content got text %q", got.Text)
			}
			if got.MimeType != tc.wantMime {
				t.Fatalf("mime: want=%q got=%q", tc.wantMime, got.MimeType)
			}
			if got.Base64() == "" {
				t.Fatalf("Base64: want non-empty")
			}
		})
	}
}

func TestExtractWordDocument(t *testing.T) {
	data := buildZip(t, "word/document.xml", docxBody)
	got, err := New().Extract(context.Background(), File{Name: "bio.docx", MimeType: MimeDOCX, Data: data})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.IsBinary() {
		t.Fatalf("Extract: want text got binary")
	}
	want := "Cell Biology\nMitochondria produce ATP."
	if got.Text != want {
		t.Fatalf("text: want=%q got=%q", want, got.Text)
	}
}

const docxNested = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">
<w:body>
<w:p><w:r><w:t>Intro</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Role</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Ribosome</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Builds</w:t></w:r></w:p><w:p><w:r><w:t>proteins</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Outro</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r><w:hyperlink><w:r><w:t>Krebs cycle</w:t></w:r></w:hyperlink></w:p>
<w:sdt><w:sdtContent><w:p><w:r><w:t>Boxed fact</w:t></w:r></w:p></w:sdtContent></w:sdt>
<w:p><w:ins><w:r><w:t>Inserted</w:t></w:r></w:ins><w:r><w:tab/><w:t>line</w:t></w:r></w:p>
<w:p><mc:AlternateContent><mc:Choice><w:r><w:t>Shape</w:t></w:r></mc:Choice><mc:Fallback><w:r><w:t>Shape copy</w:t></w:r></mc:Fallback></mc:AlternateContent></w:p>
</w:body>
</w:document>`

func TestExtractWordKeepsNestedTextInOrder(t *testing.T) {
	data := buildZip(t, "word/document.xml", docxNested)
	got, err := New().Extract(context.Background(), File{Name: "krebs.docx", MimeType: MimeDOCX, Data: data})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := strings.Join([]string{
		"Intro",
		"Cell | Role",
		"Ribosome | Builds proteins",
		"Outro",
		"See Krebs cycle",
		"Boxed fact",
		"Inserted line",
		"Shape",
	}, "\n")
	if got.Text != want {
		t.Fatalf("text: want=%q got=%q", want, got.Text)
	}
}

func TestExtractLegacyOfficeIsUnsupported(t *testing.T) {
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
	for _, f := range []File{
		{Name: "old.doc", MimeType: MimeDOC, Data: ole},
		{Name: "old.ppt", MimeType: MimePPT, Data: ole},
	} {
		_, err := New().Extract(context.Background(), f)
		var ute *UnsupportedTypeError
		if !errors.As(err, &ute) {
			t.Fatalf("Extract(%s): want UnsupportedTypeError got=%v", f.Name, err)
		}
		if !strings.Contains(err.Error(), "legacy binary Office format") {
			t.Fatalf("Extract(%s): message=%q", f.Name, err.Error())
		}
	}
}

func TestExtractWordCorruptIsDomainError(t *testing.T) {
	_, err := New().Extract(context.Background(), File{Name: "broken.docx", Data: []byte("not a zip")})
	if !errors.Is(err, ErrDocumentRead) {
		t.Fatalf("Extract: want ErrDocumentRead got=%v", err)
	}
	if !strings.Contains(err.Error(), "failed to read document") {
		t.Fatalf("message: got=%q", err.Error())
	}
}

func TestExtractSlidesNumericOrder(t *testing.T) {
	data := buildZip(t,
		"ppt/slides/slide2.xml", slideXML("Second"),
		"ppt/slides/slide10.xml", slideXML("Tenth"),
		"ppt/slides/slide1.xml", slideXML("First", "Intro"),
		"ppt/slides/slide3.xml", slideXML(),
		"ppt/slides/_rels/slide1.xml.rels", `<Relationships/>`,
		"ppt/slideLayouts/slideLayout1.xml", slideXML("Layout text"),
	)
	got, err := New().Extract(context.Background(), File{Name: "deck.pptx", MimeType: MimePPTX, Data: data})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "[Slide 1]\nFirst Intro\n\n[Slide 2]\nSecond\n\n[Slide 10]\nTenth"
	if got.Text != want {
		t.Fatalf("text: want=%q got=%q", want, got.Text)
	}
}

func TestExtractSlidesWithoutText(t *testing.T) {
	data := buildZip(t, "ppt/slides/slide1.xml", slideXML())
	got, err := New().Extract(context.Background(), File{Name: "blank.pptx", Data: data})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Text != NoSlideText {
		t.Fatalf("text: want=%q got=%q", NoSlideText, got.Text)
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := New().Extract(context.Background(), File{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hello")})
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("Extract: want UnsupportedTypeError got=%v", err)
	}
	if ute.Name != "notes.txt" || !strings.Contains(err.Error(), "text/plain") {
		t.Fatalf("error does not name the type: %v", err)
	}
}

func TestClassifyContentTypes(t *testing.T) {
	ex := New()
	cases := []struct {
		file File
		want domain.ContentType
	}{
		{file: File{Name: "a.mp3", MimeType: "audio/mpeg"}, want: domain.ContentTypeAudio},
		{file: File{Name: "a.webm", MimeType: "video/webm"}, want: domain.ContentTypeAudio},
		{file: File{Name: "a.pdf"}, want: domain.ContentTypeDocument},
		{file: File{Name: "a.pptx"}, want: domain.ContentTypeDocument},
		{file: File{Name: "a.doc"}, want: domain.ContentTypeDocument},
	}
	for _, tc := range cases {
		kind, err := ex.Classify(tc.file)
		if err != nil {
			t.Fatalf("Classify(%s): %v", tc.file.Name, err)
		}
		if kind.ContentType() != tc.want {
			t.Fatalf("Classify(%s): want=%s got=%s", tc.file.Name, tc.want, kind.ContentType())
		}
	}
}

func TestClassifySniffsUnlabelledDocx(t *testing.T) {
	data := buildZip(t,
		"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml", docxBody,
	)
	kind, err := New().Classify(File{Name: "upload", Data: data})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if kind != KindWord {
		t.Fatalf("kind: want=%s got=%s", KindWord, kind)
	}
}

func TestExtractHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Extract(ctx, File{Name: "a.pdf", Data: []byte("%PDF")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract: want context.Canceled got=%v", err)
	}
}
