package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ImageObject is a raw image resource pulled out of the document's object
// table. Xref is the PDF object number; Data is the undecoded stream content
// in FileType's container format (jpg, png, tiff, ...).
type ImageObject struct {
	Xref     int
	PageNr   int
	Name     string
	FileType string
	Data     []byte
}

// ImageRefs lists the object numbers of image resources used by page n,
// in ascending xref order.
func (d *Document) ImageRefs(pageNr int) []int {
	objs := d.images[pageNr]
	refs := make([]int, 0, len(objs))
	for xref := range objs {
		refs = append(refs, xref)
	}
	sort.Ints(refs)
	return refs
}

// ImageRefs lists the image object numbers referenced by this page.
func (p *Page) ImageRefs() []int { return p.doc.ImageRefs(p.Number) }

// ImageObject resolves an xref against page n's image table. The second
// return is false when the xref does not reference an image on that page.
func (d *Document) ImageObject(pageNr, xref int) (ImageObject, bool) {
	obj, ok := d.images[pageNr][xref]
	return obj, ok
}

// scanImages walks every page's image resources through pdfcpu and buffers
// the raw streams. Buffering up front keeps the rest of the pipeline free of
// one-shot readers.
//
// pdfcpu reports an image object on every page whose resource dictionary
// references it, so with a shared resource dictionary one object shows up on
// all pages. Each object number is attributed to exactly one page, the lowest
// one that references it, so the same image is never embedded twice.
func scanImages(path string, numPages int) (map[int]map[int]ImageObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open for image scan: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pages, err := api.ExtractImagesRaw(f, nil, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	type rawImage struct {
		pageNr int
		objNr  int
		img    model.Image
	}
	var found []rawImage
	for _, pageImgs := range pages {
		for objNr, img := range pageImgs {
			found = append(found, rawImage{pageNr: img.PageNr, objNr: objNr, img: img})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].pageNr != found[j].pageNr {
			return found[i].pageNr < found[j].pageNr
		}
		return found[i].objNr < found[j].objNr
	})

	out := make(map[int]map[int]ImageObject, numPages)
	seen := make(map[int]bool, len(found))
	for _, r := range found {
		if seen[r.objNr] {
			continue
		}
		seen[r.objNr] = true
		data, err := io.ReadAll(r.img)
		if err != nil || len(data) == 0 {
			continue
		}
		if out[r.pageNr] == nil {
			out[r.pageNr] = make(map[int]ImageObject)
		}
		out[r.pageNr][r.objNr] = ImageObject{
			Xref:     r.objNr,
			PageNr:   r.pageNr,
			Name:     r.img.Name,
			FileType: r.img.FileType,
			Data:     data,
		}
	}
	return out, nil
}
