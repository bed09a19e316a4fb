package datauri

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestEncodeSniffsMediaType(t *testing.T) {
	uri := Encode(pngHeader)

	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("expected png data uri, got %q", uri)
	}
}

func TestDecodeReturnsOriginalPayload(t *testing.T) {
	payload := []byte("bonjour")
	mediaType, data, err := Decode(EncodeWithType("text/plain", payload))
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}

	if mediaType != "text/plain" {
		t.Fatalf("expected media type text/plain, got %q", mediaType)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("expected payload %q, got %q", payload, data)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	testCases := []string{
		"",
		"https://example.com/image.png",
		"data:text/plain;base64",
		"data:text/plain,not-base64-marked",
		"data:text/plain;base64,***",
	}

	for _, uri := range testCases {
		if _, _, err := Decode(uri); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", uri, err)
		}
	}
}

func TestMediaType(t *testing.T) {
	if got := MediaType("data:audio/wav;base64,AAAA"); got != "audio/wav" {
		t.Fatalf("expected audio/wav, got %q", got)
	}
	if got := MediaType("not a uri"); got != "" {
		t.Fatalf("expected empty media type, got %q", got)
	}
}

func TestEncodeFileReadsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	file := LocalFile(path)
	if file.Name() != "scan.png" {
		t.Fatalf("expected base name scan.png, got %q", file.Name())
	}

	uri, err := EncodeFile(context.Background(), file)
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	if MediaType(uri) != "image/png" {
		t.Fatalf("expected image/png, got %q", MediaType(uri))
	}
}

func TestEncodeFileFailsForMissingFile(t *testing.T) {
	_, err := EncodeFile(context.Background(), LocalFile(filepath.Join(t.TempDir(), "missing.png")))
	if err == nil {
		t.Fatalf("expected missing file to fail")
	}
}

func TestEncodeFileStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EncodeFile(ctx, InMemoryFile("note.txt", []byte("contenu")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
