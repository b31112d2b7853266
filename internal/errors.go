package internal

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes wrapped by TranscriptError. Match them with errors.Is.
var (
	ErrVideoUnavailable                = errors.New("the video is no longer available")
	ErrInvalidVideoID                  = errors.New("you provided an invalid video id")
	ErrTranscriptsDisabled             = errors.New("subtitles are disabled for this video")
	ErrNoTranscriptFound               = errors.New("no transcripts were found for any of the requested language codes")
	ErrNotTranslatable                 = errors.New("the requested language is not translatable")
	ErrTranslationLanguageNotAvailable = errors.New("the requested translation language is not available")
	ErrAgeRestricted                   = errors.New("this video is age-restricted; transcripts cannot be retrieved without authenticating")
	ErrVideoUnplayable                 = errors.New("the video is unplayable")
	ErrIPBlocked                       = errors.New("YouTube is blocking requests from your IP (too many requests or a captcha was required)")
	ErrDataUnparsable                  = errors.New("the data required to fetch the transcript is not parsable")
	ErrYouTubeRequestFailed            = errors.New("request to YouTube failed")
	ErrPOTokenRequired                 = errors.New("the requested video cannot be retrieved without a PO token")
)

// TranscriptError is returned by every failing captions call.
type TranscriptError struct {
	VideoID string
	Err     error
	Detail  string
}

func (e *TranscriptError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "could not retrieve a transcript for the video %s", watchURL(e.VideoID))
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", e.Detail)
	}
	return sb.String()
}

func (e *TranscriptError) Unwrap() error {
	return e.Err
}

func newTranscriptError(videoID string, cause error, detail string) *TranscriptError {
	return &TranscriptError{VideoID: videoID, Err: cause, Detail: detail}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
