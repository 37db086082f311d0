package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
	"github.com/ironsheep/signboard-mcp/internal/logging"
	"github.com/ironsheep/signboard-mcp/internal/pipeline"
	"github.com/ironsheep/signboard-mcp/internal/translate"
)

// allowedExtensions are the upload types accepted by /v1/translate.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Runner decodes and runs an upload. *pipeline.Pipeline satisfies it.
type Runner interface {
	RunBytes(ctx context.Context, data []byte, target string) (*pipeline.Outcome, error)
}

// Handlers serves the HTTP API.
type Handlers struct {
	runner         Runner
	ocrInfo        func() interface{}
	maxUploadBytes int64
}

// NewHandlers returns the API handlers. ocrInfo may be nil.
func NewHandlers(runner Runner, ocrInfo func() interface{}, maxUploadBytes int64) *Handlers {
	return &Handlers{
		runner:         runner,
		ocrInfo:        ocrInfo,
		maxUploadBytes: maxUploadBytes,
	}
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TranslateResponse is the body of a successful POST /v1/translate.
type TranslateResponse struct {
	RequestID        string                `json:"request_id"`
	Bounds           detection.BoundingBox `json:"bounds"`
	Origin           point                 `json:"origin"`
	Fallback         bool                  `json:"fallback"`
	ExtractedText    string                `json:"extracted_text"`
	DetectedLanguage string                `json:"detected_language"`
	TargetLanguage   string                `json:"target_language"`
	TranslatedText   string                `json:"translated_text"`
	OverlayPNG       string                `json:"overlay_png"`
	AudioMP3         string                `json:"audio_mp3"`
	Report           string                `json:"report"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error"`
}

// Translate handles POST /v1/translate.
func (h *Handlers) Translate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := logging.RequestID(ctx)

	if r.ContentLength > h.maxUploadBytes {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, "",
			fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "",
				fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		h.writeError(w, r, http.StatusBadRequest, "", fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "", errors.New("no file part"))
		return
	}
	defer file.Close()

	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		h.writeError(w, r, http.StatusBadRequest, "",
			fmt.Errorf("unsupported file type %q, expected jpg, jpeg or png", header.Filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "", fmt.Errorf("failed to read upload: %w", err))
		return
	}

	target := r.FormValue("target_language")
	if target == "" {
		target = "en"
	}

	out, err := h.runner.RunBytes(ctx, data, target)
	if err != nil {
		reason, _ := pipeline.ReasonOf(err)
		h.writeError(w, r, statusFor(err), string(reason), err)
		return
	}

	png, err := imaging.EncodePNG(out.Overlay)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "", err)
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{
		RequestID:        requestID,
		Bounds:           out.Extraction.Bounds,
		Origin:           point{X: out.Extraction.Origin.X, Y: out.Extraction.Origin.Y},
		Fallback:         out.Extraction.Fallback,
		ExtractedText:    out.Extraction.Text,
		DetectedLanguage: out.Translation.DetectedLanguage,
		TargetLanguage:   out.Translation.TargetLanguage,
		TranslatedText:   out.Translation.TranslatedText,
		OverlayPNG:       base64.StdEncoding.EncodeToString(png),
		AudioMP3:         base64.StdEncoding.EncodeToString(out.Audio),
		Report:           out.Report(),
	})
}

// Languages handles GET /v1/languages.
func (h *Handlers) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": translate.SupportedLanguages,
	})
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "signboard",
	}
	if h.ocrInfo != nil {
		body["ocr"] = h.ocrInfo()
	}
	writeJSON(w, http.StatusOK, body)
}

// NotFound answers paths with no route.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		RequestID: logging.RequestID(r.Context()),
		Error:     "no route for " + r.URL.Path,
	})
}

// MethodNotAllowed answers a known path requested with the wrong method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		RequestID: logging.RequestID(r.Context()),
		Error:     fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
	})
}

// statusFor maps a pipeline failure to an HTTP status.
func statusFor(err error) int {
	var f *pipeline.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError
	}
	if f.Timeout() {
		return http.StatusGatewayTimeout
	}
	switch f.Reason {
	case pipeline.DecodeError:
		return http.StatusBadRequest
	case pipeline.NoTextDetected, pipeline.UnsupportedLanguage:
		return http.StatusUnprocessableEntity
	case pipeline.ExtractionError, pipeline.TranslationError, pipeline.SpeechSynthesisError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, reason string, err error) {
	logging.FromContext(r.Context()).Warn().
		Int("status", status).
		Str("reason", reason).
		Err(err).
		Msg("request failed")

	writeJSON(w, status, errorResponse{
		RequestID: logging.RequestID(r.Context()),
		Reason:    reason,
		Error:     err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
