package model

import "strings"

// TranscriptMessage is one line of the onboarding conversation.
type TranscriptMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Transcript is the full onboarding conversation handed to the pipeline.
type Transcript []TranscriptMessage

// Render formats the transcript as "sender: text" lines for prompt use.
func (t Transcript) Render() string {
	var b strings.Builder
	for _, msg := range t {
		sender := msg.Sender
		if sender == "" {
			sender = "unknown"
		}
		b.WriteString(sender)
		b.WriteString(": ")
		b.WriteString(msg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Company is the business identity extracted during onboarding.
type Company struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}
