package pdfdoc

import (
	"strings"
	"testing"

	"github.com/hyperifyio/pdf2md/internal/testpdf"
)

func open(t *testing.T, pages []testpdf.PageSpec) *Document {
	t.Helper()
	path, err := testpdf.Doc(t.TempDir(), "fixture.pdf", pages)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestOpenBasics(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{
		{Lines: []string{"page one"}},
		{Lines: []string{"page two"}},
	})
	if doc.NumPages() != 2 {
		t.Errorf("NumPages = %d, want 2", doc.NumPages())
	}
	if doc.Filename() != "fixture.pdf" {
		t.Errorf("Filename = %q", doc.Filename())
	}
	if doc.SizeMB() <= 0 {
		t.Errorf("SizeMB = %f", doc.SizeMB())
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/doc.pdf"); err == nil {
		t.Fatal("Open accepted a missing file")
	}
}

func TestOpenGarbage(t *testing.T) {
	path, err := testpdf.NotAPDF(t.TempDir(), "fake.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open accepted non-PDF content")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{{Lines: []string{"x"}}})
	if err := doc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestPageRange(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{{Lines: []string{"x"}}})
	if _, err := doc.Page(1); err != nil {
		t.Errorf("Page(1): %v", err)
	}
	if _, err := doc.Page(0); err == nil {
		t.Error("Page(0) accepted")
	}
	if _, err := doc.Page(2); err == nil {
		t.Error("Page(2) accepted on a one-page document")
	}
}

func TestPlainText(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{{Lines: []string{"The quick brown fox."}}})
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	text, err := page.PlainText()
	if err != nil {
		t.Fatalf("PlainText: %v", err)
	}
	if !strings.Contains(text, "quick brown fox") {
		t.Errorf("text = %q", text)
	}
}

func TestLayoutGroupsColumns(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{{TableRows: [][]string{
		{"Name", "Qty"},
		{"Apples", "3"},
		{"Pears", "7"},
	}}})
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	blocks := page.Layout()
	if len(blocks) == 0 {
		t.Fatal("Layout returned no blocks")
	}

	var lines int
	var multiSpan int
	for _, b := range blocks {
		for _, ln := range b.Lines {
			lines++
			if len(ln.Spans) > 1 {
				multiSpan++
			}
		}
	}
	if lines < 3 {
		t.Errorf("layout found %d lines, want at least 3", lines)
	}
	if multiSpan < 2 {
		t.Errorf("only %d lines split into columns; widely spaced cells should form separate spans", multiSpan)
	}
}

func TestLayoutOrdersTopDown(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{{Lines: []string{"first line here", "second line here"}}})
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, b := range page.Layout() {
		for _, ln := range b.Lines {
			for _, sp := range ln.Spans {
				texts = append(texts, sp.Text)
			}
		}
	}
	joined := strings.Join(texts, " ")
	first := strings.Index(joined, "first")
	second := strings.Index(joined, "second")
	if first == -1 || second == -1 || first > second {
		t.Errorf("lines out of order: %q", joined)
	}
}

func TestMetadata(t *testing.T) {
	path, err := testpdf.DocWithInfo(t.TempDir(), "meta.pdf", "Quarterly Report", "Jane Doe",
		[]testpdf.PageSpec{{Lines: []string{"body"}}})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	meta := doc.Metadata()
	if meta.Title != "Quarterly Report" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Author != "Jane Doe" {
		t.Errorf("Author = %q", meta.Author)
	}
}

func TestImageRefsSortedAndScoped(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{
		{Lines: []string{"with image"}, ImageW: 64, ImageH: 48},
		{Lines: []string{"without image"}},
	})

	refs := doc.ImageRefs(1)
	if len(refs) == 0 {
		t.Fatal("page 1 reports no image objects")
	}
	for i := 1; i < len(refs); i++ {
		if refs[i-1] >= refs[i] {
			t.Errorf("refs not ascending: %v", refs)
		}
	}
	if extra := doc.ImageRefs(2); len(extra) != 0 {
		t.Errorf("page 2 reports %d images, want 0", len(extra))
	}
	obj, ok := doc.ImageObject(1, refs[0])
	if !ok {
		t.Fatal("ImageObject lookup failed for listed ref")
	}
	if len(obj.Data) == 0 {
		t.Error("image object has no data")
	}
}

// Shared resource dictionaries make pdfcpu report every image on every page.
// Each object must still land on exactly one page.
func TestImageObjectsAttributedOnce(t *testing.T) {
	doc := open(t, []testpdf.PageSpec{
		{Lines: []string{"small image"}, ImageW: 40, ImageH: 40},
		{Lines: []string{"large image"}, ImageW: 200, ImageH: 150},
		{Lines: []string{"text only"}},
	})

	perObject := make(map[int]int)
	var total int
	for n := 1; n <= doc.NumPages(); n++ {
		for _, xref := range doc.ImageRefs(n) {
			perObject[xref]++
			total++
		}
	}
	if total != 2 {
		t.Fatalf("document reports %d image objects, want 2", total)
	}
	for xref, pages := range perObject {
		if pages != 1 {
			t.Errorf("object %d attributed to %d pages", xref, pages)
		}
	}
}
