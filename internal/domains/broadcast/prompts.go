package broadcast

import (
	"fmt"
	"strings"

	"github.com/cryptocast/cryptocast/internal/config"
)

// Prompt builders. Every builder is a pure function of the segment's inputs
// and the show config, and all of them pin the output to the same wire
// format: one SPEAKER<TEXT line per utterance, speakers restricted to the
// cast.

func formatRules(cfg config.BroadcastConfig) string {
	names := make([]string, 0, len(Cast()))
	for _, sp := range Cast() {
		names = append(names, string(sp))
	}
	return fmt.Sprintf(
		"Write a dialogue of roughly %d seconds of spoken airtime between the anchors %s. "+
			"Output one line per utterance in the exact format SPEAKER%sTEXT, for example %s%sWelcome back. "+
			"Use only these speaker names: %s. No stage directions, no markdown, no empty lines.",
		cfg.SegmentSeconds, strings.Join(names, " and "), lineSeparator,
		Cast()[0], lineSeparator, strings.Join(names, ", "))
}

func persona(cfg config.BroadcastConfig) string {
	return fmt.Sprintf(
		"%s is the lead anchor: sharp, fast, slightly sarcastic about market hype. "+
			"%s is the co-anchor: calmer, explains fundamentals, keeps %s honest. "+
			"They host %s, a live crypto news broadcast.",
		cfg.Anchor, cfg.CoAnchor, cfg.Anchor, cfg.ShowName)
}

// BuildPrompt implements Segment for NewsSegment.
func (s NewsSegment) BuildPrompt(cfg config.BroadcastConfig) string {
	framing := "This is a continuation of an ongoing broadcast. Open with a short transition from the previous story, then cover the article below."
	if s.First {
		framing = fmt.Sprintf(
			"This is the opening segment of the broadcast. Greet the audience, introduce %s, then cover the article below.",
			cfg.ShowName)
	}

	var sb strings.Builder
	sb.WriteString(persona(cfg))
	sb.WriteString("\n\n")
	sb.WriteString(framing)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", s.Item.Title)
	if s.Item.Ticker != "" {
		fmt.Fprintf(&sb, "Token: %s\n", s.Item.Ticker)
	}
	if s.Item.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n", s.Item.Source)
	}
	fmt.Fprintf(&sb, "Summary: %s\n", s.Item.Description)
	if s.Item.Content != "" {
		fmt.Fprintf(&sb, "Article: %s\n", s.Item.Content)
	}
	sb.WriteString("\n")
	sb.WriteString(formatRules(cfg))
	return sb.String()
}

// BuildPrompt implements Segment for JokeBreakSegment.
func (s JokeBreakSegment) BuildPrompt(cfg config.BroadcastConfig) string {
	return fmt.Sprintf(
		"%s\n\nThe anchors take a short break from the news. Write a quick, playful exchange: "+
			"one crypto-flavored joke or bit of banter, then a hand-back to the news. Keep it light, nothing offensive.\n\n%s",
		persona(cfg), formatRules(cfg))
}

// BuildPrompt implements Segment for ChatResponseSegment.
func (s ChatResponseSegment) BuildPrompt(cfg config.BroadcastConfig) string {
	var sb strings.Builder
	sb.WriteString(persona(cfg))
	sb.WriteString("\n\nViewers sent messages in the live chat. The anchors read out a few and respond on air. Messages:\n")
	for _, m := range s.Messages {
		fmt.Fprintf(&sb, "- %s: %s\n", m.Author, m.Text)
	}
	sb.WriteString("\nAnswer the viewers by name where natural, then steer back to the broadcast.\n\n")
	sb.WriteString(formatRules(cfg))
	return sb.String()
}

// BuildPrompt implements Segment for ConclusionSegment.
func (s ConclusionSegment) BuildPrompt(cfg config.BroadcastConfig) string {
	return fmt.Sprintf(
		"%s\n\nThe anchors have reached the end of the current news run. Write a short wrap-up: "+
			"recap that the headlines will repeat for viewers who just joined, thank the audience, and tease that fresh stories drop in continuously.\n\n%s",
		persona(cfg), formatRules(cfg))
}
