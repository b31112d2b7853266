package internal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTrack struct {
	Lang         string
	Name         string
	Kind         string
	Translatable bool
	// Captions are served as transcript panel segments, one second apart
	Captions []string
	// TimedText overrides the timedtext document built from Captions
	TimedText  string
	Status     int
	ExtraQuery string
}

type playerRequest struct {
	VideoID string `json:"videoId"`
	Context struct {
		Client struct {
			ClientName string `json:"clientName"`
		} `json:"client"`
	} `json:"context"`
}

// fakeYouTube serves the player, watch page, transcript panel and timedtext
// endpoints. Clients from f.client() send their www.youtube.com requests here.
type fakeYouTube struct {
	server *httptest.Server

	Playability    map[string]any
	NoCaptions     bool
	Tracks         []fakeTrack
	PlayerStatus   int
	PlayerFailures int

	mu             sync.Mutex
	playerHits     int
	transcriptHits int
	timedTextHits  int
	playerRequest  playerRequest
	timedTextQuery url.Values
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	t.Helper()
	f := &fakeYouTube{}

	mux := http.NewServeMux()
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		f.handlePlayer(t, w, r)
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(f.playerResponse(r.URL.Query().Get("v")))
		require.NoError(t, err)
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;</script></html>`, data)
	})
	mux.HandleFunc("/youtubei/v1/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		f.handleTranscript(t, w, r)
	})
	mux.HandleFunc("/api/timedtext", f.handleTimedText)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// rerouteTransport sends every request to target, keeping path and query
type rerouteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (rt rerouteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = ""
	return rt.next.RoundTrip(r)
}

func (f *fakeYouTube) httpClient() *http.Client {
	target, _ := url.Parse(f.server.URL)
	return &http.Client{Transport: rerouteTransport{target: target, next: f.server.Client().Transport}}
}

func (f *fakeYouTube) client(options ...ClientOption) *Client {
	opts := append([]ClientOption{
		WithHTTPClient(f.httpClient()),
		WithRateLimit(0),
	}, options...)
	return NewClient(opts...)
}

func (f *fakeYouTube) hits() (player, transcript, timedText int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playerHits, f.transcriptHits, f.timedTextHits
}

func (f *fakeYouTube) handlePlayer(t *testing.T, w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.playerHits++
	hits := f.playerHits
	f.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var req playerRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	f.mu.Lock()
	f.playerRequest = req
	f.mu.Unlock()

	if hits <= f.PlayerFailures {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	if f.PlayerStatus != 0 {
		w.WriteHeader(f.PlayerStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(f.playerResponse(req.VideoID)))
}

func (f *fakeYouTube) playerResponse(videoID string) map[string]any {
	playability := f.Playability
	if playability == nil {
		playability = map[string]any{"status": "OK", "playableInEmbed": true}
	}

	resp := map[string]any{
		"playabilityStatus": playability,
		"videoDetails":      map[string]any{"videoId": videoID, "title": "Test video"},
		"streamingData": map[string]any{
			"formats": []map[string]any{{"itag": 18, "url": "https://rr1.googlevideo.com/videoplayback?itag=18", "mimeType": "video/mp4", "bitrate": 1}},
		},
	}
	if f.NoCaptions {
		return resp
	}

	tracks := []map[string]any{}
	for _, tr := range f.Tracks {
		baseURL := fmt.Sprintf("https://www.youtube.com/api/timedtext?v=%s&lang=%s&fmt=srv3%s", videoID, tr.Lang, tr.ExtraQuery)
		track := map[string]any{
			"baseUrl":        baseURL,
			"name":           map[string]any{"simpleText": tr.Name},
			"languageCode":   tr.Lang,
			"isTranslatable": tr.Translatable,
		}
		if tr.Kind != "" {
			track["kind"] = tr.Kind
			track["baseUrl"] = baseURL + "&kind=" + tr.Kind
		}
		tracks = append(tracks, track)
	}

	resp["captions"] = map[string]any{
		"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": tracks},
	}
	return resp
}

func (f *fakeYouTube) handleTranscript(t *testing.T, w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.transcriptHits++
	f.mu.Unlock()

	var req struct {
		Params string `json:"params"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

	lang := transcriptLanguage(req.Params)
	for _, tr := range f.Tracks {
		if tr.Lang != lang {
			continue
		}
		if tr.Status != 0 {
			w.WriteHeader(tr.Status)
			return
		}

		segments := []map[string]any{}
		for i, text := range tr.Captions {
			segments = append(segments, map[string]any{
				"transcriptSegmentRenderer": map[string]any{
					"startMs":       strconv.Itoa(i * 1000),
					"endMs":         strconv.Itoa(i*1000 + 1500),
					"snippet":       map[string]any{"elementsAttributedString": map[string]any{"content": text}},
					"startTimeText": map[string]any{"elementsAttributedString": map[string]any{"content": fmt.Sprintf("0:%02d", i)}},
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"actions": []map[string]any{{
				"elementsCommand": map[string]any{
					"transformEntityCommand": map[string]any{
						"arguments": map[string]any{
							"transformTranscriptSegmentListArguments": map[string]any{
								"overwrite": map[string]any{"initialSegments": segments},
							},
						},
					},
				},
			}},
		}))
		return
	}
	http.NotFound(w, r)
}

// transcriptLanguage decodes the language code from get_transcript params:
// "\n" len videoID "\x12" len escaped(base64("\n\x03asr\x12\x02" lang "\x1a\x00")) "\x18\x01"
func transcriptLanguage(params string) string {
	outer, err := base64.RawStdEncoding.DecodeString(params)
	if err != nil || len(outer) < 2 {
		return ""
	}
	start := 2 + int(outer[1]) + 2
	if start > len(outer)-2 {
		return ""
	}

	escaped, err := url.QueryUnescape(string(outer[start : len(outer)-2]))
	if err != nil {
		return ""
	}
	inner, err := base64.StdEncoding.DecodeString(escaped)
	if err != nil || len(inner) < 9 {
		return ""
	}
	return string(inner[7 : len(inner)-2])
}

func (f *fakeYouTube) handleTimedText(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.timedTextHits++
	f.timedTextQuery = r.URL.Query()
	f.mu.Unlock()

	lang := r.URL.Query().Get("lang")
	kind := r.URL.Query().Get("kind")
	for _, tr := range f.Tracks {
		if tr.Lang != lang || tr.Kind != kind {
			continue
		}
		if tr.Status != 0 {
			w.WriteHeader(tr.Status)
			return
		}
		doc := tr.TimedText
		if doc == "" {
			doc = timedText(tr.Captions...)
		}
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, doc)
		return
	}
	http.NotFound(w, r)
}

// timedText builds a timedtext document from text bodies, one second apart
func timedText(bodies ...string) string {
	doc := `<?xml version="1.0" encoding="utf-8" ?><transcript>`
	for i, body := range bodies {
		doc += fmt.Sprintf(`<text start="%d" dur="1.5">%s</text>`, i, body)
	}
	return doc + `</transcript>`
}
