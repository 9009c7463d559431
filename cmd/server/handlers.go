package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"

	"essayforge/internal/docgen"
	"essayforge/internal/essay"
	"essayforge/internal/extractor"
)

const (
	maxUploadBytes = 100 << 20

	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	noEssayNotice = "No essay available. Generate one first."
)

// maxConcurrentGenerations bounds in-flight completion calls so one slow
// upstream request cannot occupy every handler goroutine.
const maxConcurrentGenerations = 4

// Server holds all shared state.
type Server struct {
	mu          sync.RWMutex
	docContent  string // extracted text of the uploaded document
	docFilename string // recorded even when extraction yields nothing
	latestEssay string // raw Markdown of the last generated essay

	writer  essay.Writer
	history *essay.History
	ocr     *extractor.OCRConfig

	genSem chan struct{}
	tmpl   *template.Template
}

// NewServer wires the essay writer, its history, and the OCR capability
// into a ready-to-serve handler set.
func NewServer(w essay.Writer, h *essay.History, ocr *extractor.OCRConfig) *Server {
	return &Server{
		writer:  w,
		history: h,
		ocr:     ocr,
		genSem:  make(chan struct{}, maxConcurrentGenerations),
		tmpl:    template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// pageData feeds the form page template.
type pageData struct {
	Topic    string
	Essay    template.HTML // rendered Markdown, empty when no essay yet
	HasEssay bool
	Filename string
	Error    string
}

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Printf("Template render failed: %v", err)
	}
}

// currentPage snapshots server state into template data.
func (s *Server) currentPage() pageData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := pageData{Filename: s.docFilename}
	if s.latestEssay != "" {
		html, err := docgen.RenderHTML(s.latestEssay)
		if err != nil {
			data.Error = "Failed to render essay: " + err.Error()
		} else {
			data.Essay = template.HTML(html)
			data.HasEssay = true
		}
	}
	return data
}

// ========== Form Page ==========

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, s.currentPage())
	case http.MethodPost:
		s.handleGenerate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGenerate processes a form submission: optional upload, extraction,
// then a bounded completion call. Stage failures come back on the form page
// instead of a bare 500.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && err != http.ErrNotMultipart {
		data := s.currentPage()
		data.Error = "Failed to parse upload: " + err.Error()
		s.renderPage(w, data)
		return
	}

	topic := r.FormValue("topic")
	if topic == "" {
		data := s.currentPage()
		data.Error = "Please enter an essay topic."
		s.renderPage(w, data)
		return
	}

	// A new upload replaces the stored document. The filename is recorded
	// even when extraction yields no text (unsupported extension), so the
	// page still shows what was uploaded.
	if file, header, err := r.FormFile("file"); err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			page := s.currentPage()
			page.Topic = topic
			page.Error = "Failed to read upload: " + readErr.Error()
			s.renderPage(w, page)
			return
		}

		content, extractErr := extractor.Extract(header.Filename, data, s.ocr)
		if extractErr != nil {
			page := s.currentPage()
			page.Topic = topic
			page.Error = "Failed to extract document text: " + extractErr.Error()
			s.renderPage(w, page)
			return
		}

		s.mu.Lock()
		s.docContent = content
		s.docFilename = header.Filename
		s.mu.Unlock()
		log.Printf("Uploaded %s (%d bytes, %d chars extracted)", header.Filename, len(data), len(content))
	}

	s.mu.RLock()
	docContent := s.docContent
	s.mu.RUnlock()

	s.genSem <- struct{}{}
	essayText, err := s.writer.Generate(r.Context(), topic, docContent)
	<-s.genSem
	if err != nil {
		page := s.currentPage()
		page.Topic = topic
		page.Error = "Failed to generate essay: " + err.Error()
		s.renderPage(w, page)
		return
	}

	s.mu.Lock()
	s.latestEssay = essayText
	s.mu.Unlock()

	page := s.currentPage()
	page.Topic = topic
	s.renderPage(w, page)
}

// ========== Remove File ==========

// handleRemoveFile clears the uploaded document and the conversation
// history. The latest essay stays downloadable.
func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	s.docContent = ""
	s.docFilename = ""
	s.mu.Unlock()
	s.history.Clear()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ========== Download ==========

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	essayText := s.latestEssay
	s.mu.RUnlock()

	if essayText == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, noEssayNotice)
		return
	}

	var buf bytes.Buffer
	if err := docgen.Write(essayText, &buf); err != nil {
		log.Printf("DOCX conversion failed: %v", err)
		http.Error(w, "Failed to build document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", docxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename=essay.docx`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// ========== Health ==========

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ========== Template ==========

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>EssayForge</title>
<style>
  body { font-family: Georgia, serif; max-width: 820px; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.6rem; }
  form.compose { background: #f7f7f4; border: 1px solid #ddd; border-radius: 6px; padding: 1rem 1.25rem; }
  label { display: block; margin: .6rem 0 .2rem; font-weight: bold; }
  input[type=text] { width: 100%; padding: .5rem; font-size: 1rem; box-sizing: border-box; }
  button { margin-top: .8rem; padding: .5rem 1.2rem; font-size: 1rem; cursor: pointer; }
  .filebar { margin-top: .6rem; display: flex; align-items: center; gap: .75rem; }
  .filebar form { display: inline; }
  .error { color: #a40000; background: #fdeaea; border: 1px solid #e7b8b8; padding: .6rem .8rem; border-radius: 4px; margin-top: 1rem; }
  .essay { border-top: 2px solid #333; margin-top: 2rem; padding-top: 1rem; }
  .essay table { border-collapse: collapse; }
  .essay td, .essay th { border: 1px solid #999; padding: .3rem .6rem; }
  .download { margin-top: 1rem; }
</style>
</head>
<body>
  <h1>EssayForge</h1>

  <form class="compose" method="POST" action="/" enctype="multipart/form-data">
    <label for="topic">Essay topic</label>
    <input type="text" id="topic" name="topic" value="{{.Topic}}" placeholder="e.g. The history of the printing press" required>

    <label for="file">Reference document (PDF or DOCX, optional)</label>
    <input type="file" id="file" name="file" accept=".pdf,.docx">

    <button type="submit">Generate essay</button>
  </form>

  {{if .Filename}}
  <div class="filebar">
    <span>Using document: <strong>{{.Filename}}</strong></span>
    <form method="POST" action="/remove_file"><button type="submit">Remove</button></form>
  </div>
  {{end}}

  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}

  {{if .HasEssay}}
  <div class="essay">{{.Essay}}</div>
  <div class="download"><a href="/download">Download as DOCX</a></div>
  {{end}}
</body>
</html>
`
