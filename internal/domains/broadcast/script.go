package broadcast

import (
	"strings"
)

// Speaker is a member of the show's cast. The generation prompt constrains
// scripts to the cast, but the parser preserves unknown names as-is; voice
// resolution decides what happens to them downstream.
type Speaker string

const (
	SpeakerNova Speaker = "NOVA"
	SpeakerByte Speaker = "BYTE"
)

// Cast returns the fixed speaker enumeration for a broadcast.
func Cast() []Speaker {
	return []Speaker{SpeakerNova, SpeakerByte}
}

// lineSeparator splits a transcript line into speaker and text.
const lineSeparator = "<"

// ScriptLine is one speaker+text unit, the atomic unit of synthesis and
// playback. Order matters: it is dialogue order.
type ScriptLine struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// ParseScript converts a raw transcript into ordered script lines. The parser
// is lenient: lines without the separator, or with an empty speaker or empty
// text, are dropped rather than failing the script.
func ParseScript(transcript string) []ScriptLine {
	if transcript == "" {
		return nil
	}

	var lines []ScriptLine
	for _, raw := range strings.Split(transcript, "\n") {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if raw == "" {
			continue
		}
		sep := strings.Index(raw, lineSeparator)
		if sep < 0 {
			continue
		}
		speaker := strings.TrimSpace(raw[:sep])
		text := strings.TrimSpace(raw[sep+len(lineSeparator):])
		if speaker == "" || text == "" {
			continue
		}
		lines = append(lines, ScriptLine{Speaker: Speaker(speaker), Text: text})
	}
	return lines
}

// CastVoices maps cast members to synthesis voice identifiers.
type CastVoices map[Speaker]string

// Resolve returns the voice for a speaker. The second return is false for
// speakers outside the configured cast; callers decide the fallback policy.
func (cv CastVoices) Resolve(sp Speaker) (string, bool) {
	voice, ok := cv[sp]
	return voice, ok
}

// VoicesFromConfig builds CastVoices from the string-keyed config map.
func VoicesFromConfig(m map[string]string) CastVoices {
	cv := make(CastVoices, len(m))
	for name, voice := range m {
		cv[Speaker(name)] = voice
	}
	return cv
}
