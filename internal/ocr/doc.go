// Package ocr extracts text from prepared sign images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Images are
// passed to the engine as in-memory PNG bytes, so no temporary files are
// written.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Languages
//
// The default language is English ("eng"). Signs in other scripts need their
// traineddata listed in Options.Languages, e.g. "eng+hin+chi_sim".
//
// # Cancellation
//
// Tesseract calls block in C and cannot observe a context. ExtractText
// returns when its context is done but the recognition goroutine keeps
// running until Tesseract finishes.
package ocr
