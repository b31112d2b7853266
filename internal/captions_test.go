package internal

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientList(t *testing.T) {
	yt := newFakeYouTube(t)
	yt.Tracks = []fakeTrack{
		{Lang: "en", Name: "English (auto-generated)", Kind: "asr", Translatable: true},
		{Lang: "de", Name: "German"},
		{Lang: "en", Name: "English", Translatable: true},
	}

	list, err := yt.client().List(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, testVideoID, list.VideoID)

	var got []string
	for tr := range list.All() {
		got = append(got, fmt.Sprintf("%s/%s/%t/%t", tr.LanguageCode, tr.Language, tr.IsGenerated, tr.IsTranslatable))
	}
	assert.Equal(t, []string{
		"de/German/false/false",
		"en/English/false/true",
		"en/English (auto-generated)/true/true",
	}, got)

	manual, err := list.FindManuallyCreated("en")
	require.NoError(t, err)
	assert.NotContains(t, manual.url, "fmt=srv3")

	yt.mu.Lock()
	defer yt.mu.Unlock()
	assert.Equal(t, testVideoID, yt.playerRequest.VideoID)
	assert.Equal(t, "ANDROID", yt.playerRequest.Context.Client.ClientName)
}

func TestClientListEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeYouTube)
	}{
		{"no tracks", func(yt *fakeYouTube) {}},
		{"captions missing", func(yt *fakeYouTube) { yt.NoCaptions = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := newFakeYouTube(t)
			tt.setup(yt)

			list, err := yt.client().List(context.Background(), testVideoID)
			require.NoError(t, err)
			assert.Empty(t, slices.Collect(list.All()))
		})
	}
}

func TestClientListWithoutPlayabilityStatus(t *testing.T) {
	for _, playability := range []map[string]any{{}, {"status": ""}} {
		yt := newFakeYouTube(t)
		yt.Playability = playability
		yt.Tracks = []fakeTrack{{Lang: "en", Name: "English"}}

		list, err := yt.client().List(context.Background(), testVideoID)
		require.NoError(t, err)
		assert.Len(t, slices.Collect(list.All()), 1)
	}
}

func TestClientListErrors(t *testing.T) {
	tests := []struct {
		name       string
		videoID    string
		setup      func(*fakeYouTube)
		wantErr    error
		wantDetail string
	}{
		{
			name: "login required",
			setup: func(yt *fakeYouTube) {
				yt.Playability = map[string]any{"status": "LOGIN_REQUIRED", "reason": "This video may be inappropriate for some users."}
			},
			wantErr: ErrAgeRestricted,
		},
		{
			name: "private",
			setup: func(yt *fakeYouTube) {
				yt.Playability = map[string]any{"status": "LOGIN_REQUIRED", "reason": "This video is private"}
			},
			wantErr:    ErrVideoUnavailable,
			wantDetail: "private video",
		},
		{
			name: "unavailable",
			setup: func(yt *fakeYouTube) {
				yt.Playability = map[string]any{"status": "ERROR", "reason": "This video is unavailable"}
			},
			wantErr:    ErrVideoUnavailable,
			wantDetail: "This video is unavailable",
		},
		{
			name: "unplayable",
			setup: func(yt *fakeYouTube) {
				yt.Playability = map[string]any{"status": "UNPLAYABLE", "reason": "The uploader has not made this video available in your country"}
			},
			wantErr:    ErrVideoUnplayable,
			wantDetail: "The uploader has not made this video available in your country",
		},
		{
			name:    "id too short",
			videoID: "abc",
			setup:   func(yt *fakeYouTube) {},
			wantErr: ErrInvalidVideoID,
		},
		{
			name:    "player rate limited",
			setup:   func(yt *fakeYouTube) { yt.PlayerStatus = http.StatusTooManyRequests },
			wantErr: ErrIPBlocked,
		},
		{
			name:       "player forbidden",
			setup:      func(yt *fakeYouTube) { yt.PlayerStatus = http.StatusForbidden },
			wantErr:    ErrYouTubeRequestFailed,
			wantDetail: "403 Forbidden",
		},
		{
			name:       "player server error",
			setup:      func(yt *fakeYouTube) { yt.PlayerStatus = http.StatusServiceUnavailable },
			wantErr:    ErrYouTubeRequestFailed,
			wantDetail: "503 Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := newFakeYouTube(t)
			tt.setup(yt)

			videoID := tt.videoID
			if videoID == "" {
				videoID = testVideoID
			}

			_, err := yt.client().List(context.Background(), videoID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var transcriptErr *TranscriptError
			require.ErrorAs(t, err, &transcriptErr)
			assert.Equal(t, videoID, transcriptErr.VideoID)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, transcriptErr.Detail)
			}
			assert.True(t, strings.HasPrefix(err.Error(), "could not retrieve a transcript for the video "))
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	yt := newFakeYouTube(t)
	yt.PlayerFailures = 2
	yt.Tracks = []fakeTrack{{Lang: "en", Name: "English"}}

	client := yt.client(WithRetries(2))
	client.http.Transport.(playabilityTransport).next.(*retryTransport).retry.InitialWait = time.Millisecond

	list, err := client.List(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(list.All()), 1)

	playerHits, _, _ := yt.hits()
	assert.Equal(t, 3, playerHits)
}

func TestClientDoesNotModifyHTTPClient(t *testing.T) {
	yt := newFakeYouTube(t)
	hc := yt.httpClient()
	transport := hc.Transport

	client := yt.client(WithHTTPClient(hc), WithTimeout(5*time.Second))
	_, err := client.List(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Zero(t, hc.Timeout)
	assert.Nil(t, hc.Jar)
	assert.Equal(t, transport, hc.Transport)
	assert.Equal(t, 5*time.Second, client.http.Timeout)
}

func TestTranscriptFetch(t *testing.T) {
	yt := newFakeYouTube(t)
	yt.Tracks = []fakeTrack{
		{Lang: "en", Name: "English", Captions: []string{"Hey <b>there</b>", "", "it&#39;s"}},
	}
	list, err := yt.client().List(context.Background(), testVideoID)
	require.NoError(t, err)
	tr, err := list.FindTranscript("en")
	require.NoError(t, err)

	t.Run("plain", func(t *testing.T) {
		fetched, err := tr.Fetch(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, &FetchedTranscript{
			VideoID:      testVideoID,
			Language:     "English",
			LanguageCode: "en",
			Snippets: []Snippet{
				{Text: "Hey there", Start: 0, Duration: 1.5},
				{Text: "it's", Start: 2, Duration: 1.5},
			},
		}, fetched)
	})

	t.Run("preserve formatting", func(t *testing.T) {
		fetched, err := tr.Fetch(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, "Hey <b>there</b>", fetched.Snippets[0].Text)
	})

	_, transcriptHits, timedTextHits := yt.hits()
	assert.Equal(t, 2, transcriptHits)
	assert.Zero(t, timedTextHits)
}

func TestTranslatedTranscriptFetch(t *testing.T) {
	yt := newFakeYouTube(t)
	yt.Tracks = []fakeTrack{
		{
			Lang:         "en",
			Name:         "English",
			Translatable: true,
			TimedText:    `<transcript><text start="0.5" dur="1.25">Hallo &lt;i&gt;da&lt;/i&gt;</text><text start="2">ohne Dauer</text><text start="3" dur="1"></text></transcript>`,
		},
	}
	list, err := yt.client().List(context.Background(), testVideoID)
	require.NoError(t, err)
	tr, err := list.FindTranscript("en")
	require.NoError(t, err)

	translated, err := tr.Translate("de")
	require.NoError(t, err)

	fetched, err := translated.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, &FetchedTranscript{
		VideoID:      testVideoID,
		Language:     "German",
		LanguageCode: "de",
		IsGenerated:  true,
		Snippets: []Snippet{
			{Text: "Hallo da", Start: 0.5, Duration: 1.25},
			{Text: "ohne Dauer", Start: 2, Duration: 0},
		},
	}, fetched)

	yt.mu.Lock()
	defer yt.mu.Unlock()
	assert.Equal(t, "de", yt.timedTextQuery.Get("tlang"))
	assert.Empty(t, yt.timedTextQuery.Get("fmt"))
	assert.Zero(t, yt.transcriptHits)
}

func TestTranscriptFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		track     fakeTrack
		translate string
		wantErr   error
	}{
		{
			name:    "rate limited",
			track:   fakeTrack{Lang: "en", Name: "English", Status: http.StatusTooManyRequests},
			wantErr: ErrIPBlocked,
		},
		{
			name:    "no segments",
			track:   fakeTrack{Lang: "en", Name: "English"},
			wantErr: ErrTranscriptsDisabled,
		},
		{
			name:      "translation not xml",
			track:     fakeTrack{Lang: "en", Name: "English", Translatable: true, TimedText: `<transcript><text start="abc">x</text></transcript>`},
			translate: "fr",
			wantErr:   ErrDataUnparsable,
		},
		{
			name:      "translation forbidden",
			track:     fakeTrack{Lang: "en", Name: "English", Translatable: true, Status: http.StatusForbidden},
			translate: "fr",
			wantErr:   ErrYouTubeRequestFailed,
		},
		{
			name:      "translation needs po token",
			track:     fakeTrack{Lang: "en", Name: "English", Translatable: true, ExtraQuery: "&exp=xpe"},
			translate: "fr",
			wantErr:   ErrPOTokenRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := newFakeYouTube(t)
			yt.Tracks = []fakeTrack{tt.track}

			list, err := yt.client().List(context.Background(), testVideoID)
			require.NoError(t, err)
			tr, err := list.FindTranscript("en")
			require.NoError(t, err)

			if tt.translate != "" {
				tr, err = tr.Translate(tt.translate)
				require.NoError(t, err)
			}

			_, err = tr.Fetch(context.Background(), false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientListCanceledContext(t *testing.T) {
	yt := newFakeYouTube(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := yt.client().List(ctx, testVideoID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithPlayabilityStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing object", `{"captions":{}}`, `{"captions":{},"playabilityStatus":{"status":"OK"}}`},
		{"missing status", `{"playabilityStatus":{"reason":"x"}}`, `{"playabilityStatus":{"reason":"x","status":"OK"}}`},
		{"empty status", `{"playabilityStatus":{"status":""}}`, `{"playabilityStatus":{"status":"OK"}}`},
		{"status kept", `{"playabilityStatus":{"status":"ERROR"}}`, `{"playabilityStatus":{"status":"ERROR"}}`},
		{"not json", `<html>`, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(withPlayabilityStatus([]byte(tt.body))))
		})
	}
}
