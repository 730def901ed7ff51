package cleaner

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector returns the ISO 639-1 code of text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

type linguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over all languages lingua knows.
// Models are loaded lazily on first use.
func NewLinguaDetector() LanguageDetector {
	return &linguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

func (d *linguaDetector) Detect(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
