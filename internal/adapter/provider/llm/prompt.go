package llm

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/myenglish-exercises/internal/provider"
)

func buildPrompt(req provider.SentenceRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write practice sentences for a %s vocabulary course at B1 level.\n\n", req.Language)
	fmt.Fprintf(&b, "Word: %q", req.Word)
	if req.Translation != "" {
		fmt.Fprintf(&b, " (meaning: %q)", req.Translation)
	}
	b.WriteString("\n")
	if req.Context != "" {
		fmt.Fprintf(&b, "Lesson topic: %s\n", req.Context)
	}
	b.WriteString("\n")

	if req.FindError {
		fmt.Fprintf(&b, `Write one natural %[1]s sentence of 6 to 14 words that uses the word and contains exactly one grammatical mistake
(wrong verb form, wrong article, wrong word order or a missing word). Then give the corrected sentence.

Output ONLY a valid JSON object:
{
  "sentence": "<the %[1]s sentence with the mistake>",
  "error_word": "<the wrong word as it appears in the sentence>",
  "correct": "<the corrected %[1]s sentence>",
  "explanation": "<one short sentence explaining the rule>",
  "translation": "<translation of the corrected sentence>"
}`, req.Language)
		return b.String()
	}

	fmt.Fprintf(&b, `Write one natural, grammatically correct %[1]s sentence of 6 to 14 words that uses the word.

Output ONLY a valid JSON object:
{
  "sentence": "<the %[1]s sentence>",
  "word": "<the word as it appears in the sentence>",
  "translation": "<translation of the sentence>"
}`, req.Language)
	return b.String()
}
