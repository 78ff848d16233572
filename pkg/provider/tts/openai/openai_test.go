package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/pkg/provider/tts"
	"github.com/MrWong99/salespractice/pkg/provider/tts/openai"
)

func TestSynthesize_SendsVoiceAndSpeed(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3mp3")
	}))
	defer srv.Close()

	p, err := openai.New("sk-test", openai.WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	audio, err := p.Synthesize(context.Background(), "Prove it.", tts.VoiceProfile{ID: "onyx", SpeedFactor: 0.9})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio.Data) != "ID3mp3" || audio.ContentType != "audio/mpeg" {
		t.Errorf("audio = %q (%s)", audio.Data, audio.ContentType)
	}
	if body["voice"] != "onyx" || body["model"] != "tts-1-hd" || body["input"] != "Prove it." {
		t.Errorf("request body = %v", body)
	}
	if body["response_format"] != "mp3" {
		t.Errorf("response_format = %v, want mp3", body["response_format"])
	}
	if body["speed"] != 0.9 {
		t.Errorf("speed = %v, want 0.9", body["speed"])
	}
}

func TestSynthesize_RejectsEmptyText(t *testing.T) {
	t.Parallel()
	p, _ := openai.New("sk-test")
	if _, err := p.Synthesize(context.Background(), " ", tts.VoiceProfile{ID: "onyx"}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestListVoices_Builtin(t *testing.T) {
	t.Parallel()
	p, _ := openai.New("sk-test")
	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	ids := map[string]bool{}
	for _, v := range voices {
		ids[v.ID] = true
	}
	for _, want := range []string{"alloy", "onyx", "nova", "echo"} {
		if !ids[want] {
			t.Errorf("missing voice %q", want)
		}
	}
}
