// Package nlp is the rule-based text enrichment backend: regex entity
// extraction, lexicon sentiment, and frequency-ranked topics. Enrichment is
// best-effort and never influences classification or routing.
package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/vporoshin/docflow/internal/core/domain"
)

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
		regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
		regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
	}
	moneyPattern      = regexp.MustCompile(`\$\d+(?:\.\d+)?(?:k|m|b|mn|bn)?|\d+(?:\.\d+)? (?:dollars|USD|EUR|GBP)`)
	percentagePattern = regexp.MustCompile(`\d+(?:\.\d+)?%`)
)

var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "wonderful", "fantastic",
	"terrific", "outstanding", "superb", "brilliant", "awesome",
	"impressive", "remarkable", "positive", "nice", "love", "happy",
	"satisfied", "pleased", "enjoy", "beneficial", "successful",
)

var negativeWords = wordSet(
	"bad", "poor", "terrible", "awful", "horrible", "dreadful",
	"unpleasant", "disappointing", "negative", "sad", "angry",
	"upset", "unhappy", "hate", "dislike", "mediocre",
	"inferior", "substandard", "problem", "issue", "error", "fault",
	"failure", "defect", "mistake", "unfortunate",
)

var stopWords = wordSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to",
	"from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "once", "here", "there", "all", "any", "both",
	"each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "can",
	"will", "just", "should", "now", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "having", "do", "does", "did",
	"doing", "would", "could", "of", "it", "its", "this", "that", "these",
	"those", "i", "you", "he", "she", "we", "they", "them", "his", "her",
	"their", "our", "your", "my", "me", "him", "us", "as", "what", "which",
	"who", "whom", "am",
)

const (
	maxTopics      = 5
	topicThreshold = 0.01

	sentimentCutoff = 0.05
)

type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Enrich runs all three analyses over the text. It never fails; an empty
// text yields an empty enrichment.
func (a *Analyzer) Enrich(_ context.Context, text string) (domain.Enrichment, error) {
	return domain.Enrichment{
		Entities:  extractEntities(text),
		Sentiment: calculateSentiment(text),
		Topics:    extractTopics(text),
	}, nil
}

func extractEntities(text string) map[string][]string {
	entities := map[string][]string{
		"dates":       {},
		"money":       {},
		"percentages": {},
	}

	for _, re := range datePatterns {
		entities["dates"] = append(entities["dates"], re.FindAllString(text, -1)...)
	}
	entities["money"] = moneyPattern.FindAllString(text, -1)
	entities["percentages"] = percentagePattern.FindAllString(text, -1)

	for kind, values := range entities {
		entities[kind] = dedupe(values)
	}
	return entities
}

// calculateSentiment scores the text on positive/negative lexicon hits
// normalized by word count. Scores within the cutoff band are neutral.
func calculateSentiment(text string) domain.Sentiment {
	sentiment := domain.Sentiment{Assessment: "neutral"}

	words := alphaWords(text)
	if len(words) == 0 {
		return sentiment
	}

	positive, negative := 0, 0
	for _, word := range words {
		if positiveWords[word] {
			positive++
		}
		if negativeWords[word] {
			negative++
		}
	}

	total := float64(len(words))
	sentiment.Score = float64(positive-negative) / total
	sentiment.Magnitude = float64(positive+negative) / total

	switch {
	case sentiment.Score > sentimentCutoff:
		sentiment.Assessment = "positive"
	case sentiment.Score < -sentimentCutoff:
		sentiment.Assessment = "negative"
	}
	return sentiment
}

// extractTopics ranks non-stopword tokens by relative frequency and returns
// the top ones above the threshold. Ties rank alphabetically so results are
// stable.
func extractTopics(text string) []string {
	tokens := alnumTokens(strings.ToLower(text))

	counts := make(map[string]int)
	kept := 0
	for _, token := range tokens {
		if stopWords[token] {
			continue
		}
		kept++
		if len(token) > 2 {
			counts[token]++
		}
	}
	if kept == 0 {
		return []string{}
	}

	type scored struct {
		word  string
		score float64
	}
	ranked := make([]scored, 0, len(counts))
	for word, count := range counts {
		score := float64(count) / float64(kept)
		if score > topicThreshold {
			ranked = append(ranked, scored{word, score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score == ranked[j].score {
			return ranked[i].word < ranked[j].word
		}
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxTopics {
		ranked = ranked[:maxTopics]
	}
	topics := make([]string, len(ranked))
	for i, s := range ranked {
		topics[i] = s.word
	}
	return topics
}

func alphaWords(text string) []string {
	return splitWords(strings.ToLower(text), func(r rune) bool {
		return unicode.IsLetter(r)
	})
}

func alnumTokens(lower string) []string {
	return splitWords(lower, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

func splitWords(text string, keep func(rune) bool) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !keep(r)
	})
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
