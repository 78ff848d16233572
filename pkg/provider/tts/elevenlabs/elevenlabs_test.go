package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

// ---- URL construction ----

func TestBuildURLForVoice(t *testing.T) {
	t.Parallel()
	p, _ := New("key")
	got := p.buildURLForVoice("voice-abc123")
	want := "wss://api.elevenlabs.io/v1/text-to-speech/voice-abc123/stream-input?model_id=eleven_flash_v2_5&output_format=mp3_44100_128"
	if got != want {
		t.Errorf("url = %q\nwant  %q", got, want)
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"mp3_44100_128": "audio/mpeg",
		"pcm_16000":     "audio/L16",
		"ulaw_8000":     "audio/basic",
		"weird":         "application/octet-stream",
	}
	for format, want := range tests {
		if got := contentType(format); got != want {
			t.Errorf("contentType(%q) = %q, want %q", format, got, want)
		}
	}
}

// ---- Synthesize against a local websocket server ----

// newWSServer accepts one stream-input connection, checks the handshake and
// answers with the given audio frames followed by isFinal.
func newWSServer(t *testing.T, frames [][]byte, gotText *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		ctx := r.Context()

		_, boi, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var hs boiMessage
		_ = json.Unmarshal(boi, &hs)
		if hs.XiAPIKey != "key" {
			conn.Close(websocket.StatusPolicyViolation, "bad key")
			return
		}

		_, first, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var tm textMessage
		_ = json.Unmarshal(first, &tm)
		*gotText = tm.Text

		_, _, _ = conn.Read(ctx) // flush ({"text":""})

		for _, f := range frames {
			b, _ := json.Marshal(audioResponse{Audio: base64.StdEncoding.EncodeToString(f)})
			_ = conn.Write(ctx, websocket.MessageText, b)
		}
		b, _ := json.Marshal(audioResponse{IsFinal: true})
		_ = conn.Write(ctx, websocket.MessageText, b)
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSynthesize_ConcatenatesFrames(t *testing.T) {
	t.Parallel()

	var gotText string
	srv := newWSServer(t, [][]byte{[]byte("ID3"), []byte("-frame")}, &gotText)
	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")

	p, _ := New("key", WithBaseURLs(wsBase, srv.URL))
	audio, err := p.Synthesize(context.Background(), "That sounds expensive.", tts.VoiceProfile{ID: "v1"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio.Data) != "ID3-frame" {
		t.Errorf("data = %q, want ID3-frame", audio.Data)
	}
	if audio.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q, want audio/mpeg", audio.ContentType)
	}
	if gotText != "That sounds expensive. " {
		t.Errorf("sent text = %q", gotText)
	}
}

func TestSynthesize_Validation(t *testing.T) {
	t.Parallel()
	p, _ := New("key")
	if _, err := p.Synthesize(context.Background(), "hi", tts.VoiceProfile{}); err == nil {
		t.Error("expected error for empty voice ID")
	}
	if _, err := p.Synthesize(context.Background(), "  ", tts.VoiceProfile{ID: "v"}); err == nil {
		t.Error("expected error for empty text")
	}
}

// ---- ListVoices ----

func TestListVoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" || r.Header.Get("xi-api-key") != "key" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"voices":[
			{"voice_id":"abc","name":"Adam","category":"premade","labels":{"accent":"american","gender":"male"}},
			{"voice_id":"def","name":"Greta","labels":{"language":"de"}}
		]}`))
	}))
	defer srv.Close()

	p, _ := New("key", WithBaseURLs("ws://unused", srv.URL))
	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(voices))
	}
	if voices[0].ID != "abc" || voices[0].Language != "en" || voices[0].Metadata["category"] != "premade" {
		t.Errorf("voice[0] = %+v", voices[0])
	}
	if voices[1].Language != "de" {
		t.Errorf("voice[1].Language = %q, want de", voices[1].Language)
	}
}

func TestNew_EmptyAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
