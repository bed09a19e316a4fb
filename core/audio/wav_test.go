package audio

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeWAVRoundTripsPCM(t *testing.T) {
	info := GetDefaultEncodingInfo()
	first := []byte{0x01, 0x00, 0xff, 0x7f}
	second := []byte{0x00, 0x80, 0x10, 0x00}

	wavData, err := EncodeWAV(info, first, second)
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	if !bytes.HasPrefix(wavData, []byte("RIFF")) {
		t.Fatalf("expected RIFF header, got %q", wavData[:4])
	}

	decodedInfo, pcm, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}

	if decodedInfo.SampleRate != info.SampleRate || decodedInfo.NumChannels() != 1 {
		t.Fatalf("expected %+v, got %+v", info, decodedInfo)
	}
	expected := append(append([]byte{}, first...), second...)
	if !bytes.Equal(pcm, expected) {
		t.Fatalf("expected pcm %v, got %v", expected, pcm)
	}
}

func TestEncodeWAVJoinsSamplesSplitAcrossChunks(t *testing.T) {
	wavData, err := EncodeWAV(GetDefaultEncodingInfo(), []byte{0x34}, []byte{0x12})
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}

	_, pcm, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if !bytes.Equal(pcm, []byte{0x34, 0x12}) {
		t.Fatalf("expected joined sample, got %v", pcm)
	}
}

func TestEncodeWAVRejectsCompandedAudio(t *testing.T) {
	_, err := EncodeWAV(EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}, []byte{0xff})
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("definitely not a wav file")); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
}
