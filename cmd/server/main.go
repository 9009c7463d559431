package main

import (
	"log"
	"net/http"
	"os"

	"essayforge/internal/essay"
	"essayforge/internal/extractor"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Fatal("GROQ_API_KEY is not set (add it to .env)")
	}
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = essay.DefaultModel
	}

	tesseractOk := extractor.DetectTesseract()

	gen := essay.NewGenerator(apiKey, "", model)
	srv := NewServer(gen, gen.History, &extractor.OCRConfig{TesseractOk: tesseractOk})

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/remove_file", srv.handleRemoveFile)
	mux.HandleFunc("/download", srv.handleDownload)
	mux.HandleFunc("/ping", srv.handlePing)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("EssayForge starting on http://localhost:%s (model=%s)", port, model)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
