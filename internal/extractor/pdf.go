package extractor

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractPDF extracts text from a PDF held in memory. For each page it
// collects the trimmed native text (skipped when empty), then the OCR text
// of every raster image embedded on that page. Fragments are joined with
// blank lines, in page order, text before images within a page.
func ExtractPDF(data []byte, ocrCfg *OCRConfig) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	imagesByPage, err := ocrEmbeddedImages(data, ocrCfg)
	if err != nil {
		// Image OCR is best-effort; native text still stands.
		log.Printf("PDF image OCR skipped: %v", err)
	}

	var fragments []string
	numPages := r.NumPage()

	for pageIndex := 1; pageIndex <= numPages; pageIndex++ {
		p := r.Page(pageIndex)
		if !p.V.IsNull() {
			str, err := p.GetPlainText(nil)
			if err != nil {
				str = ""
			}
			if text := strings.TrimSpace(str); text != "" {
				fragments = append(fragments, text)
			}
		}
		fragments = append(fragments, imagesByPage[pageIndex]...)
	}

	// Images pdfcpu attributed to pages beyond what the text reader saw.
	var trailing []int
	for page := range imagesByPage {
		if page > numPages {
			trailing = append(trailing, page)
		}
	}
	sort.Ints(trailing)
	for _, page := range trailing {
		fragments = append(fragments, imagesByPage[page]...)
	}

	return strings.Join(fragments, "\n\n"), nil
}

// imagePageRe matches pdfcpu's extracted-image naming:
// <basename>_<pageNr>_<resourceID>.<ext>
var imagePageRe = regexp.MustCompile(`_(\d+)_[^_.]+\.\w+$`)

// ocrEmbeddedImages writes the PDF to a scratch file, pulls its raster
// images out with pdfcpu, and runs Tesseract over each one. Recognized
// text comes back grouped by page number; empty results are dropped.
func ocrEmbeddedImages(data []byte, ocrCfg *OCRConfig) (map[int][]string, error) {
	if !canRunOCR(ocrCfg) {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "essayforge-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "upload.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write scratch pdf: %w", err)
	}

	imgDir := filepath.Join(tmpDir, "images")
	if err := os.MkdirAll(imgDir, 0700); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(pdfPath, imgDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(imgDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sortImageNames(names)

	byPage := make(map[int][]string)
	for _, name := range names {
		text, err := OCRImage(filepath.Join(imgDir, name))
		if err != nil {
			log.Printf("OCR failed for %s: %v", name, err)
			continue
		}
		if text == "" {
			continue
		}
		page := pageFromImageName(name)
		byPage[page] = append(byPage[page], text)
	}
	return byPage, nil
}

// sortImageNames orders extracted image filenames by page, then by the
// numeric resource index. A lexicographic sort would put Im10 before Im2.
func sortImageNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		pi, pj := pageFromImageName(names[i]), pageFromImageName(names[j])
		if pi != pj {
			return pi < pj
		}
		ri, rj := resourceIndexFromImageName(names[i]), resourceIndexFromImageName(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

var resourceNumRe = regexp.MustCompile(`(\d+)$`)

// resourceIndexFromImageName parses the trailing number of the resource ID
// segment (e.g. Im12 in upload_1_Im12.png).
func resourceIndexFromImageName(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		base = base[i+1:]
	}
	if m := resourceNumRe.FindString(base); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

// pageFromImageName parses the page number pdfcpu encodes into extracted
// image filenames. Unparseable names land on page 1.
func pageFromImageName(name string) int {
	if m := imagePageRe.FindStringSubmatch(name); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
