package broadcast

import (
	"testing"
)

func TestParseScript_Dialogue(t *testing.T) {
	transcript := "NOVA< Good evening, welcome to the show.\n" +
		"BYTE< Bitcoin is up four percent today.\n" +
		"\n" +
		"NOVA< More after the break."

	lines := ParseScript(transcript)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Speaker != SpeakerNova {
		t.Errorf("line 0 speaker = %q, want NOVA", lines[0].Speaker)
	}
	if lines[0].Text != "Good evening, welcome to the show." {
		t.Errorf("line 0 text = %q", lines[0].Text)
	}
	if lines[1].Speaker != SpeakerByte {
		t.Errorf("line 1 speaker = %q, want BYTE", lines[1].Speaker)
	}
	if lines[2].Text != "More after the break." {
		t.Errorf("line 2 text = %q", lines[2].Text)
	}
}

func TestParseScript_DropsMalformedLines(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		want       int
	}{
		{"no separator", "NOVA says something without a marker", 0},
		{"empty speaker", "< floating text", 0},
		{"empty text", "BYTE<   ", 0},
		{"empty input", "", 0},
		{"mixed", "garbage line\nNOVA< kept\n< dropped", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseScript(tc.transcript)
			if len(got) != tc.want {
				t.Errorf("got %d lines, want %d", len(got), tc.want)
			}
		})
	}
}

func TestParseScript_TrimsWhitespaceAndCR(t *testing.T) {
	lines := ParseScript("  NOVA  <  spaced out  \r\nBYTE< windows newline\r")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Speaker != "NOVA" || lines[0].Text != "spaced out" {
		t.Errorf("line 0 not trimmed: %+v", lines[0])
	}
	if lines[1].Text != "windows newline" {
		t.Errorf("carriage return not stripped: %q", lines[1].Text)
	}
}

func TestParseScript_PreservesUnknownSpeakers(t *testing.T) {
	lines := ParseScript("GUEST< I was told there would be charts.")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Speaker != "GUEST" {
		t.Errorf("speaker = %q, want GUEST", lines[0].Speaker)
	}
}

func TestCastVoices_Resolve(t *testing.T) {
	cv := VoicesFromConfig(map[string]string{"NOVA": "voice-a", "BYTE": "voice-b"})
	if v, ok := cv.Resolve(SpeakerNova); !ok || v != "voice-a" {
		t.Errorf("Resolve(NOVA) = %q, %v", v, ok)
	}
	if _, ok := cv.Resolve("GUEST"); ok {
		t.Errorf("Resolve(GUEST) should report no voice")
	}
}
