package provider

// SentenceRequest describes the sentence a generator should write.
type SentenceRequest struct {
	Word        string // vocabulary word the sentence is built around
	Translation string // the word in the other language, as a hint
	Language    string // language of the sentence, e.g. "Dutch"
	FindError   bool   // plant exactly one grammatical mistake
	Context     string // optional lesson topic
}

// SentenceResult is the structured output of a sentence generator.
type SentenceResult struct {
	Sentence    string
	Word        string // the vocabulary word, or the wrong word for find-error
	Correct     string // corrected sentence, find-error only
	Explanation string
	Translation string
}
