package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// State is a step of the pipeline state machine.
type State string

const (
	StateIdle                  State = "Idle"
	StateRegionDetected        State = "RegionDetected"
	StatePreprocessed          State = "Preprocessed"
	StateExtracted             State = "Extracted"
	StateDetectedAndTranslated State = "DetectedAndTranslated"
	StateComposited            State = "Composited"
	StateSynthesized           State = "Synthesized"
	StateDone                  State = "Done"
	StateFailed                State = "Failed"
)

// Reason is the terminal reason code of a failed run.
type Reason string

const (
	// DecodeError: the upload is not a decodable, non-empty image.
	DecodeError Reason = "DecodeError"

	// UnsupportedLanguage: the target is not one of translate.SupportedLanguages.
	UnsupportedLanguage Reason = "UnsupportedLanguage"

	// ProcessingError: a local image stage (region, preprocessing, overlay)
	// returned an error. Not expected for decoded input.
	ProcessingError Reason = "ProcessingError"

	// ExtractionError: the text extraction collaborator failed.
	ExtractionError Reason = "ExtractionError"

	// NoTextDetected: extraction succeeded but found only whitespace.
	NoTextDetected Reason = "NoTextDetected"

	// TranslationError: the translation collaborator failed.
	TranslationError Reason = "TranslationError"

	// SpeechSynthesisError: the speech collaborator failed.
	SpeechSynthesisError Reason = "SpeechSynthesisError"

	// LanguageDetectionDegraded is never terminal. It labels the log entry and
	// metric recorded when detection fails and "unknown" is substituted.
	LanguageDetectionDegraded Reason = "LanguageDetectionDegraded"
)

// Sentinels for errors.Is matching against a *Failure.
var (
	ErrDecode              = errors.New("image could not be decoded")
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	ErrProcessing          = errors.New("image processing failed")
	ErrExtraction          = errors.New("text extraction failed")
	ErrNoTextDetected      = errors.New("no text detected")
	ErrTranslation         = errors.New("translation failed")
	ErrSpeechSynthesis     = errors.New("speech synthesis failed")
)

var reasonSentinels = map[Reason]error{
	DecodeError:          ErrDecode,
	UnsupportedLanguage:  ErrUnsupportedLanguage,
	ProcessingError:      ErrProcessing,
	ExtractionError:      ErrExtraction,
	NoTextDetected:       ErrNoTextDetected,
	TranslationError:     ErrTranslation,
	SpeechSynthesisError: ErrSpeechSynthesis,
}

// Failure is the error returned by a run that did not reach Done.
type Failure struct {
	// Reason is the terminal reason code.
	Reason Reason

	// State is the last state reached before the failure.
	State State

	// Err is the underlying cause, if any. NoTextDetected has none.
	Err error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %v", f.Reason, reasonSentinels[f.Reason])
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel for f.Reason, e.g. errors.Is(err, ErrTranslation).
func (f *Failure) Is(target error) bool {
	s, ok := reasonSentinels[f.Reason]
	return ok && s == target
}

// Timeout reports whether the failing stage ran out of time.
func (f *Failure) Timeout() bool {
	return errors.Is(f.Err, context.DeadlineExceeded)
}

// ReasonOf extracts the reason code from an error returned by Run.
func ReasonOf(err error) (Reason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}

func fail(reason Reason, state State, err error) *Failure {
	return &Failure{Reason: reason, State: state, Err: err}
}
