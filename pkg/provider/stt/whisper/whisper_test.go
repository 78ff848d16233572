package whisper_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/pkg/provider"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/stt/whisper"
)

// ---- helpers ----------------------------------------------------------------

type received struct {
	filename string
	mime     string
	audio    string
	language string
	model    string
}

// newMockServer creates a test server that answers POST /inference with
// responseText and records the multipart fields of the last request.
func newMockServer(t *testing.T, responseText string, got *received) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if got != nil {
			*got = received{
				filename: hdr.Filename,
				mime:     hdr.Header.Get("Content-Type"),
				audio:    string(data),
				language: r.FormValue("language"),
				model:    r.FormValue("model"),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": responseText})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---- provider construction --------------------------------------------------

func TestNew_EmptyServerURL_ReturnsError(t *testing.T) {
	t.Parallel()
	if _, err := whisper.New(""); err == nil {
		t.Fatal("expected error for empty serverURL, got nil")
	}
}

// ---- transcription ----------------------------------------------------------

func TestTranscribe_UploadsAudioAndTrimsText(t *testing.T) {
	t.Parallel()

	var got received
	srv := newMockServer(t, "  Hello there, Steve.\n", &got)

	p, err := whisper.New(srv.URL+"/", whisper.WithModel("base.en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := p.Transcribe(context.Background(), stt.Request{
		Audio:       strings.NewReader("RIFFfake"),
		Filename:    "take.webm",
		ContentType: "audio/webm",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "Hello there, Steve." {
		t.Errorf("text = %q, want trimmed transcript", tr.Text)
	}
	if got.filename != "take.webm" || got.mime != "audio/webm" {
		t.Errorf("file part = %q (%q), want take.webm (audio/webm)", got.filename, got.mime)
	}
	if got.audio != "RIFFfake" {
		t.Errorf("audio = %q, want RIFFfake", got.audio)
	}
	if got.language != "en" {
		t.Errorf("language = %q, want en", got.language)
	}
	if got.model != "base.en" {
		t.Errorf("model = %q, want base.en", got.model)
	}
}

func TestTranscribe_DefaultsFilenameAndMime(t *testing.T) {
	t.Parallel()

	var got received
	srv := newMockServer(t, "ok", &got)
	p, _ := whisper.New(srv.URL)

	if _, err := p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("x")}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.filename != "audio.wav" || got.mime != "audio/wav" {
		t.Errorf("file part = %q (%q), want audio.wav (audio/wav)", got.filename, got.mime)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		rejected bool
	}{
		{status: http.StatusInternalServerError},
		{status: http.StatusBadRequest, rejected: true},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", tc.status)
			}))
			defer srv.Close()

			p, _ := whisper.New(srv.URL)
			_, err := p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("x")})
			if err == nil {
				t.Fatalf("expected error on HTTP %d", tc.status)
			}
			if got := provider.IsRejection(err); got != tc.rejected {
				t.Errorf("IsRejection = %v, want %v", got, tc.rejected)
			}
		})
	}
}

func TestTranscribe_NoAudio(t *testing.T) {
	t.Parallel()
	p, _ := whisper.New("http://localhost:1")
	if _, err := p.Transcribe(context.Background(), stt.Request{}); err == nil {
		t.Fatal("expected error for nil audio")
	}
}
