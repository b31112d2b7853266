package internal

import "strings"

// Snippet is one timed caption entry
type Snippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the time the snippet stops being shown
func (s Snippet) End() float64 {
	return s.Start + s.Duration
}

// FetchedTranscript holds the caption entries of one fetched transcript
type FetchedTranscript struct {
	VideoID      string    `json:"video_id"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"language_code"`
	IsGenerated  bool      `json:"is_generated"`
	Snippets     []Snippet `json:"snippets"`
}

// Len returns the number of caption entries
func (ft *FetchedTranscript) Len() int {
	return len(ft.Snippets)
}

// Texts returns the text field of every caption entry, in order
func (ft *FetchedTranscript) Texts() []string {
	texts := make([]string, len(ft.Snippets))
	for i, s := range ft.Snippets {
		texts[i] = s.Text
	}
	return texts
}

// RawData returns the caption entries as plain records
func (ft *FetchedTranscript) RawData() []map[string]any {
	raw := make([]map[string]any, len(ft.Snippets))
	for i, s := range ft.Snippets {
		raw[i] = map[string]any{
			"text":     s.Text,
			"start":    s.Start,
			"duration": s.Duration,
		}
	}
	return raw
}

// JoinedText concatenates all caption texts separated by single spaces
func (ft *FetchedTranscript) JoinedText() string {
	return strings.Join(ft.Texts(), " ")
}
