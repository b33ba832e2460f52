package puzzle

import (
	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// WordClass is the coarse grammatical role used to pick strategic tokens.
type WordClass int

const (
	WordOther WordClass = iota
	WordArticle
	WordPreposition
	WordConjunction
	WordPronoun
	WordTimeAdverb
	WordShort
)

func (c WordClass) String() string {
	switch c {
	case WordArticle:
		return "article"
	case WordPreposition:
		return "preposition"
	case WordConjunction:
		return "conjunction"
	case WordPronoun:
		return "pronoun"
	case WordTimeAdverb:
		return "time-adverb"
	case WordShort:
		return "short-word"
	}
	return "other"
}

// shortWordMaxRunes is the longest token still classified as a short word.
const shortWordMaxRunes = 3

// Classifier labels tokens of one sentence language from closed lookup sets.
type Classifier struct {
	articles     set
	prepositions set
	conjunctions set
	pronouns     set
	timeAdverbs  set
}

type set map[string]struct{}

func newSet(words ...string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}

var (
	dutchClassifier = &Classifier{
		articles: newSet("de", "het", "een", "'t"),
		prepositions: newSet("in", "op", "aan", "met", "voor", "naar", "van", "bij", "uit", "over",
			"onder", "tussen", "door", "tot", "zonder", "tegen", "na", "om", "achter", "naast", "tijdens", "sinds"),
		conjunctions: newSet("en", "of", "maar", "want", "dus", "omdat", "als", "dat", "toen", "terwijl",
			"hoewel", "zodat", "voordat", "nadat", "wanneer", "tenzij"),
		pronouns: newSet("ik", "jij", "je", "u", "hij", "zij", "ze", "wij", "we", "jullie", "mij", "me",
			"hem", "haar", "ons", "hen", "hun", "mijn", "jouw", "uw", "zijn", "onze", "zich", "die", "dit", "deze", "wat", "wie", "er"),
		timeAdverbs: newSet("vandaag", "morgen", "gisteren", "nu", "straks", "altijd", "nooit", "vaak",
			"soms", "al", "nog", "dan", "eerst", "later", "vroeg", "laat", "vanavond", "vanochtend", "binnenkort", "meestal"),
	}

	englishClassifier = &Classifier{
		articles: newSet("a", "an", "the"),
		prepositions: newSet("in", "on", "at", "with", "for", "to", "from", "of", "by", "about", "into",
			"over", "under", "between", "through", "without", "against", "after", "before", "during", "since", "near"),
		conjunctions: newSet("and", "or", "but", "because", "so", "if", "when", "while", "although",
			"that", "unless", "until", "whether", "though"),
		pronouns: newSet("i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
			"my", "your", "his", "its", "our", "their", "this", "these", "those", "who", "which", "there"),
		timeAdverbs: newSet("today", "tomorrow", "yesterday", "now", "soon", "always", "never", "often",
			"sometimes", "already", "still", "then", "first", "later", "early", "late", "tonight", "usually"),
	}
)

// ClassifierFor returns the lookup tables of the sentence language used in d.
func ClassifierFor(d domain.Direction) *Classifier {
	if d == domain.DirectionReverse {
		return englishClassifier
	}
	return dutchClassifier
}

// Classify returns the word class of token. The first matching table wins,
// so Dutch "het" is an article rather than a pronoun.
func (c *Classifier) Classify(token string) WordClass {
	w := domain.NormalizeSentence(token)
	switch {
	case w == "":
		return WordOther
	case c.articles.has(w):
		return WordArticle
	case c.prepositions.has(w):
		return WordPreposition
	case c.conjunctions.has(w):
		return WordConjunction
	case c.pronouns.has(w):
		return WordPronoun
	case c.timeAdverbs.has(w):
		return WordTimeAdverb
	case len([]rune(w)) <= shortWordMaxRunes:
		return WordShort
	}
	return WordOther
}

// Strategic reports whether the token at pos (of n) is worth pre-placing.
// Time adverbs count only in the first 30% of the sentence and short words
// only in the first 60%.
func (c *Classifier) Strategic(token string, pos, n int) bool {
	switch c.Classify(token) {
	case WordArticle, WordPreposition, WordConjunction, WordPronoun:
		return true
	case WordTimeAdverb:
		return float64(pos) < 0.3*float64(n)
	case WordShort:
		return float64(pos) < 0.6*float64(n)
	}
	return false
}

// Priority scores a slot for hinting: class weight plus one point for the
// first half of the sentence.
func (c *Classifier) Priority(token string, pos, n int) int {
	var score int
	switch c.Classify(token) {
	case WordArticle, WordPreposition:
		score = 3
	case WordConjunction, WordPronoun:
		score = 2
	case WordTimeAdverb, WordShort:
		score = 1
	}
	if pos*2 < n {
		score++
	}
	return score
}
