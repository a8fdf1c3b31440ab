// Package language implements the language gate applied to every
// question before it reaches the query engine. The gate is deliberately
// binary: English questions are answered in English, everything else is
// answered in Croatian.
package language

import (
	"fmt"

	"github.com/pemistahl/lingua-go"
)

const (
	englishInstruction  = "Answer in English language ONLY. Question: %s"
	croatianInstruction = "Answer in Croatian language ONLY. Question: %s"
)

// Gate classifies question text and prepends the matching language
// instruction.
type Gate struct {
	detector lingua.LanguageDetector
}

// NewGate builds the statistical detector once. The language set covers
// English, Croatian, and the neighbouring languages most likely to show
// up in questions; anything detected as non-English takes the Croatian
// branch regardless.
func NewGate() *Gate {
	languages := []lingua.Language{
		lingua.English,
		lingua.Croatian,
		lingua.German,
		lingua.Italian,
		lingua.Slovene,
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Gate{detector: detector}
}

// Detect returns the ISO 639-1 code of the detected language, or "" when
// the detector cannot classify the text. Detection runs on the raw text
// with no minimum-length guard; very short inputs may classify
// unreliably.
func (g *Gate) Detect(text string) string {
	lang, ok := g.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return lang.IsoCode639_1().String()
}

// Enforce wraps the question in a language-constraining instruction.
// English stays English; every other detection result, including
// undetectable input, maps to Croatian.
func (g *Gate) Enforce(question string) string {
	if g.Detect(question) == "EN" {
		return fmt.Sprintf(englishInstruction, question)
	}
	return fmt.Sprintf(croatianInstruction, question)
}
