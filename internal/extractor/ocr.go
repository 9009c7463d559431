package extractor

import (
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// OCRConfig carries the OCR capability probed once at startup.
type OCRConfig struct {
	TesseractOk bool // cached: true if tesseract was found
}

func canRunOCR(cfg *OCRConfig) bool {
	return cfg != nil && cfg.TesseractOk
}

// tesseractBin holds the resolved path to the tesseract binary.
// Set by DetectTesseract().
var tesseractBin string

// DetectTesseract checks whether the tesseract binary is available on PATH.
func DetectTesseract() bool {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		log.Printf("Tesseract OCR not found (embedded PDF images will be skipped)")
		return false
	}
	tesseractBin = path
	log.Printf("Tesseract found on PATH: %s", path)
	return true
}

// tesseractSem is a semaphore to limit concurrent Tesseract processes.
// Tesseract is CPU-intensive and thrashes when oversubscribed.
// Initialized to the number of CPU cores.
var tesseractSem = make(chan struct{}, runtime.NumCPU())

// OCRImage runs Tesseract on a single image file and returns the trimmed
// recognized text.
func OCRImage(imgPath string) (string, error) {
	bin := tesseractBin
	if bin == "" {
		return "", fmt.Errorf("tesseract binary not found")
	}

	tesseractSem <- struct{}{}
	defer func() { <-tesseractSem }()

	cmd := exec.Command(bin, imgPath, "stdout", "-l", "eng", "--psm", "6")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %v (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
