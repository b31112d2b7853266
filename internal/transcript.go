package internal

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Transcript describes one caption track of a video. It does nothing until fetched.
type Transcript struct {
	VideoID        string
	Language       string
	LanguageCode   string
	IsGenerated    bool
	IsTranslatable bool

	url        string
	translated bool
	client     *Client
	yt         *youtube.Client
	video      *youtube.Video
}

// Fetch downloads the caption entries of the track. With preserveFormatting,
// basic HTML emphasis tags are kept in the text.
func (t *Transcript) Fetch(ctx context.Context, preserveFormatting bool) (*FetchedTranscript, error) {
	t.client.logger.Debug("fetching transcript",
		slog.String("video_id", t.VideoID),
		slog.String("language_code", t.LanguageCode),
		slog.Bool("generated", t.IsGenerated),
		slog.Bool("translated", t.translated))

	fetch := t.fetchSegments
	if t.translated {
		fetch = t.fetchTimedText
	}

	snippets, err := fetch(ctx, preserveFormatting)
	if err != nil {
		return nil, err
	}

	return &FetchedTranscript{
		VideoID:      t.VideoID,
		Language:     t.Language,
		LanguageCode: t.LanguageCode,
		IsGenerated:  t.IsGenerated,
		Snippets:     snippets,
	}, nil
}

// fetchSegments reads the track through the transcript panel. Segments
// without text are skipped.
func (t *Transcript) fetchSegments(ctx context.Context, preserveFormatting bool) ([]Snippet, error) {
	segments, err := t.yt.GetTranscriptCtx(ctx, t.video, t.LanguageCode)
	if err != nil {
		return nil, captionsError(t.VideoID, err)
	}

	snippets := make([]Snippet, 0, len(segments))
	for _, segment := range segments {
		if segment.Text == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:     cleanCaptionText(segment.Text, preserveFormatting),
			Start:    float64(segment.StartMs) / 1000,
			Duration: float64(segment.Duration) / 1000,
		})
	}
	return snippets, nil
}

// fetchTimedText downloads a machine translation from the track's timedtext URL
func (t *Transcript) fetchTimedText(ctx context.Context, preserveFormatting bool) ([]Snippet, error) {
	if strings.Contains(t.url, "&exp=xpe") {
		return nil, newTranscriptError(t.VideoID, ErrPOTokenRequired, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building timedtext request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := t.client.http.Do(req)
	if err != nil {
		return nil, captionsError(t.VideoID, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(t.VideoID, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading timedtext: %w", err)
	}

	snippets, err := parseTimedText(data, preserveFormatting)
	if err != nil {
		return nil, newTranscriptError(t.VideoID, ErrDataUnparsable, err.Error())
	}
	return snippets, nil
}

// Translate returns a descriptor for a machine translation of this track into
// the BCP 47 language languageCode.
func (t *Transcript) Translate(languageCode string) (*Transcript, error) {
	if !t.IsTranslatable {
		return nil, newTranscriptError(t.VideoID, ErrNotTranslatable, "")
	}

	tag, err := language.Parse(languageCode)
	if err != nil {
		return nil, newTranscriptError(t.VideoID, ErrTranslationLanguageNotAvailable, "requested: "+languageCode)
	}

	translated := *t
	translated.Language = cmp.Or(display.English.Tags().Name(tag), languageCode)
	translated.LanguageCode = languageCode
	translated.IsGenerated = true
	translated.IsTranslatable = false
	translated.translated = true
	translated.url = t.url + "&tlang=" + url.QueryEscape(languageCode)
	return &translated, nil
}

func (t *Transcript) String() string {
	suffix := ""
	if t.IsTranslatable {
		suffix = "[TRANSLATABLE]"
	}
	return fmt.Sprintf("%s (%q)%s", t.LanguageCode, t.Language, suffix)
}

// TranscriptList holds the transcripts available for a video
type TranscriptList struct {
	VideoID string

	manual    []*Transcript
	generated []*Transcript
}

// All yields manually created transcripts first, then generated ones
func (l *TranscriptList) All() iter.Seq[*Transcript] {
	return func(yield func(*Transcript) bool) {
		for _, t := range l.manual {
			if !yield(t) {
				return
			}
		}
		for _, t := range l.generated {
			if !yield(t) {
				return
			}
		}
	}
}

// FindTranscript returns the first transcript matching the language codes in
// priority order. Manually created transcripts win over generated ones.
func (l *TranscriptList) FindTranscript(languageCodes ...string) (*Transcript, error) {
	return l.find(languageCodes, l.manual, l.generated)
}

// FindManuallyCreated only considers manually created transcripts
func (l *TranscriptList) FindManuallyCreated(languageCodes ...string) (*Transcript, error) {
	return l.find(languageCodes, l.manual)
}

// FindGenerated only considers generated transcripts
func (l *TranscriptList) FindGenerated(languageCodes ...string) (*Transcript, error) {
	return l.find(languageCodes, l.generated)
}

func (l *TranscriptList) find(languageCodes []string, groups ...[]*Transcript) (*Transcript, error) {
	for _, code := range languageCodes {
		for _, group := range groups {
			for _, t := range group {
				if t.LanguageCode == code {
					return t, nil
				}
			}
		}
	}

	detail := fmt.Sprintf("requested language codes: %v\n\n%s", languageCodes, l.String())
	return nil, newTranscriptError(l.VideoID, ErrNoTranscriptFound, detail)
}

func (l *TranscriptList) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "For this video (%s) transcripts are available in the following languages:\n\n", l.VideoID)

	sb.WriteString("(MANUALLY CREATED)\n")
	writeBullets(&sb, l.manual)
	sb.WriteString("\n(GENERATED)\n")
	writeBullets(&sb, l.generated)

	return sb.String()
}

// Markdown renders the list as a table for terminal display
func (l *TranscriptList) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Transcripts for `%s`\n\n", l.VideoID)
	sb.WriteString("| Code | Language | Type | Translatable |\n")
	sb.WriteString("|------|----------|------|--------------|\n")
	for t := range l.All() {
		kind := "manual"
		if t.IsGenerated {
			kind = "generated"
		}
		translatable := "no"
		if t.IsTranslatable {
			translatable = "yes"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", t.LanguageCode, t.Language, kind, translatable)
	}
	return sb.String()
}

func writeBullets[T fmt.Stringer](sb *strings.Builder, items []T) {
	if len(items) == 0 {
		sb.WriteString("None\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, " - %s\n", item)
	}
}

// addTranscript appends t to its group. A later track with an already seen
// language code replaces the earlier one in place.
func (l *TranscriptList) addTranscript(t *Transcript) {
	group := &l.manual
	if t.IsGenerated {
		group = &l.generated
	}
	for i, existing := range *group {
		if existing.LanguageCode == t.LanguageCode {
			(*group)[i] = t
			return
		}
	}
	*group = append(*group, t)
}
