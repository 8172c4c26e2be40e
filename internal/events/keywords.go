// internal/events/keywords.go

package events

import (
	"strings"
	"unicode"
)

const maxKeywords = 20

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an and are as at be but by for from has have he her his in is it its
		of on or our she so that the their them they this to was we were will with you your i me my
		us not no can do does did just about into over after before up out if then than there here
		all any each more most other some such only own same too very also join us come`) {
		stopwords[w] = struct{}{}
	}
}

// Keywords extracts the keyword set of an event's title and description:
// lowercased, non-alphanumerics stripped, stopwords dropped, first 20 tokens.
func Keywords(e *EventRecord) map[string]struct{} {
	return keywordSet(e.Title + " " + e.Description)
}

func keywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	count := 0
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if token == "" {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if count == maxKeywords {
			break
		}
		count++
		set[token] = struct{}{}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
