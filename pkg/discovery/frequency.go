package discovery

import "strings"

// Word-frequency comparison against a license template. Two texts of the
// same license differ mostly in copyright lines, so the error ratio between
// word histograms separates real matches from unrelated files.
const (
	highConfidenceLimit = 0.10
	lowConfidenceLimit  = 0.15
)

// wordFrequencies counts lowercase word occurrences in a text. A word is a
// maximal run of letters and digits.
func wordFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	addFrequencies(freq, text)
	return freq
}

func addFrequencies(freq map[string]int, text string) {
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			freq[strings.ToLower(word.String())]++
			word.Reset()
		}
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
}

// frequencyErrors sums the absolute histogram differences between a text
// and a template: words missing from the text, surplus words in the text,
// and count mismatches all count as errors.
func frequencyErrors(textFreq, templateFreq map[string]int) int {
	errors := 0
	remaining := make(map[string]int, len(textFreq))
	for word, count := range textFreq {
		remaining[word] = count
	}
	for word, count := range templateFreq {
		textCount := remaining[word]
		delete(remaining, word)
		diff := textCount - count
		if diff < 0 {
			diff = -diff
		}
		errors += diff
	}
	for _, count := range remaining {
		errors += count
	}
	return errors
}

// scoreAgainstTemplate classifies how well a text matches a template.
func scoreAgainstTemplate(text, template string) Confidence {
	templateFreq := wordFrequencies(template)
	total := 0
	for _, count := range templateFreq {
		total += count
	}
	if total == 0 {
		return ConfidenceNoTemplate
	}
	score := float64(frequencyErrors(wordFrequencies(text), templateFreq)) / float64(total)
	switch {
	case score < highConfidenceLimit:
		return ConfidenceConfident
	case score < lowConfidenceLimit:
		return ConfidenceSemiConfident
	default:
		return ConfidenceUnsure
	}
}
