package tts

import (
	"strings"

	"github.com/schollz/closestmatch"
)

// ResolveVoice finds the voice a user or config refers to: an exact voice id,
// a case-insensitive name, or failing both the closest name.
func ResolveVoice(voices []Voice, query string) (Voice, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(voices) == 0 {
		return Voice{}, false
	}

	for _, v := range voices {
		if v.VoiceID == query {
			return v, true
		}
	}
	for _, v := range voices {
		if strings.EqualFold(v.Name, query) {
			return v, true
		}
	}

	names := make([]string, 0, len(voices))
	byName := make(map[string]Voice, len(voices))
	for _, v := range voices {
		key := strings.ToLower(v.Name)
		if _, dup := byName[key]; dup {
			continue
		}
		names = append(names, key)
		byName[key] = v
	}

	match := closestmatch.New(names, []int{2}).Closest(strings.ToLower(query))
	if v, ok := byName[match]; ok {
		return v, true
	}
	return Voice{}, false
}
