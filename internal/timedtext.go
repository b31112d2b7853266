package internal

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
)

// formattingTags survive when formatting is preserved
var formattingTags = map[string]bool{
	"strong": true,
	"em":     true,
	"b":      true,
	"i":      true,
	"mark":   true,
	"small":  true,
	"del":    true,
	"ins":    true,
	"sub":    true,
	"sup":    true,
}

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	tagNamePattern = regexp.MustCompile(`^</?(\w*)`)
)

type timedTextDocument struct {
	Texts []timedTextElement `xml:"text"`
}

type timedTextElement struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// parseTimedText parses YouTube's timedtext XML into caption entries. Elements
// without character data are skipped.
func parseTimedText(data []byte, preserveFormatting bool) ([]Snippet, error) {
	var doc timedTextDocument
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing timedtext XML: %w", err)
	}

	snippets := make([]Snippet, 0, len(doc.Texts))
	for _, el := range doc.Texts {
		if el.Body == "" {
			continue
		}

		start, err := strconv.ParseFloat(el.Start, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing start %q: %w", el.Start, err)
		}

		dur := 0.0
		if el.Dur != "" {
			dur, err = strconv.ParseFloat(el.Dur, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing duration %q: %w", el.Dur, err)
			}
		}

		snippets = append(snippets, Snippet{
			Text:     cleanCaptionText(el.Body, preserveFormatting),
			Start:    start,
			Duration: dur,
		})
	}

	return snippets, nil
}

// cleanCaptionText unescapes entities YouTube double-encodes and strips markup
func cleanCaptionText(text string, preserveFormatting bool) string {
	text = html.UnescapeString(text)
	if !preserveFormatting {
		return htmlTagPattern.ReplaceAllString(text, "")
	}

	return htmlTagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := tagNamePattern.FindStringSubmatch(tag)
		if m != nil && formattingTags[m[1]] {
			return tag
		}
		return ""
	})
}
