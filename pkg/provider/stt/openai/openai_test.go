package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/stt/openai"
)

func TestTranscribe_PostsMultipartAndReturnsText(t *testing.T) {
	t.Parallel()

	var gotModel, gotAudio, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		f, hdr, err := r.FormFile("file")
		if err == nil {
			b, _ := io.ReadAll(f)
			gotAudio = string(b)
			gotFilename = hdr.Filename
			f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" What does it cost? "}`)
	}))
	defer srv.Close()

	p, err := openai.New("sk-test", openai.WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("wavdata")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "What does it cost?" {
		t.Errorf("text = %q, want trimmed text", tr.Text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotAudio != "wavdata" {
		t.Errorf("audio = %q, want wavdata", gotAudio)
	}
	if gotFilename != "audio.wav" {
		t.Errorf("filename = %q, want audio.wav", gotFilename)
	}
}

func TestTranscribe_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p, _ := openai.New("sk-bad", openai.WithBaseURL(srv.URL+"/v1/"))
	if _, err := p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("x")}); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestNew_EmptyKey(t *testing.T) {
	t.Parallel()
	if _, err := openai.New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
