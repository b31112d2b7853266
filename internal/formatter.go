package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Formatter renders fetched transcripts
type Formatter interface {
	Format(transcript *FetchedTranscript) (string, error)
	FormatMany(transcripts []*FetchedTranscript) (string, error)
}

// FormatterNames lists the names accepted by NewFormatter
var FormatterNames = []string{"text", "json", "pretty", "srt", "webvtt"}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "text", "txt":
		return TextFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	case "pretty":
		return JSONFormatter{Indent: "  "}, nil
	case "srt":
		return SRTFormatter{}, nil
	case "webvtt", "vtt":
		return WebVTTFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (supported: %s)", name, strings.Join(FormatterNames, ", "))
}

// TextFormatter writes one caption per line without timing
type TextFormatter struct{}

func (TextFormatter) Format(t *FetchedTranscript) (string, error) {
	return strings.Join(t.Texts(), "\n"), nil
}

func (f TextFormatter) FormatMany(ts []*FetchedTranscript) (string, error) {
	return formatEach(f, ts, "\n\n\n")
}

// JSONFormatter writes the raw caption records as a JSON array
type JSONFormatter struct {
	Indent string
}

func (f JSONFormatter) Format(t *FetchedTranscript) (string, error) {
	return f.marshal(t.RawData())
}

func (f JSONFormatter) FormatMany(ts []*FetchedTranscript) (string, error) {
	raw := make([][]map[string]any, len(ts))
	for i, t := range ts {
		raw[i] = t.RawData()
	}
	return f.marshal(raw)
}

func (f JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent != "" {
		data, err = json.MarshalIndent(v, "", f.Indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling transcript: %w", err)
	}
	return string(data), nil
}

// SRTFormatter writes SubRip cues
type SRTFormatter struct{}

func (SRTFormatter) Format(t *FetchedTranscript) (string, error) {
	cues := make([]string, 0, t.Len())
	for i, timing := range cueTimings(t.Snippets, ",") {
		cues = append(cues, fmt.Sprintf("%d\n%s\n%s", i+1, timing, t.Snippets[i].Text))
	}
	return strings.Join(cues, "\n\n") + "\n", nil
}

func (f SRTFormatter) FormatMany(ts []*FetchedTranscript) (string, error) {
	return formatEach(f, ts, "\n\n\n")
}

// WebVTTFormatter writes a WebVTT document
type WebVTTFormatter struct{}

func (WebVTTFormatter) Format(t *FetchedTranscript) (string, error) {
	cues := make([]string, 0, t.Len())
	for i, timing := range cueTimings(t.Snippets, ".") {
		cues = append(cues, timing+"\n"+t.Snippets[i].Text)
	}
	return "WEBVTT\n\n" + strings.Join(cues, "\n\n") + "\n", nil
}

func (f WebVTTFormatter) FormatMany(ts []*FetchedTranscript) (string, error) {
	return formatEach(f, ts, "\n\n\n")
}

func formatEach(f Formatter, ts []*FetchedTranscript, sep string) (string, error) {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		s, err := f.Format(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep), nil
}

// cueTimings builds "start --> end" lines. A cue ends early when the next one
// starts before its own duration runs out.
func cueTimings(snippets []Snippet, msSep string) []string {
	timings := make([]string, len(snippets))
	for i, s := range snippets {
		end := s.End()
		if i+1 < len(snippets) && snippets[i+1].Start < end {
			end = snippets[i+1].Start
		}
		timings[i] = formatTimestamp(s.Start, msSep) + " --> " + formatTimestamp(end, msSep)
	}
	return timings
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm
func formatTimestamp(seconds float64, msSep string) string {
	ms := int64(math.Round(seconds * 1000))
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", total/3600, total%3600/60, total%60, msSep, ms%1000)
}
