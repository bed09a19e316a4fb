package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var (
	ErrUnsupportedEncoding = errors.New("unsupported audio encoding")
	ErrInvalidWAV          = errors.New("invalid wav data")
)

// EncodeWAV wraps little-endian linear16 PCM chunks into a single WAV file.
func EncodeWAV(info EncodingInfo, chunks ...[]byte) ([]byte, error) {
	if info.IsZero() {
		info = GetDefaultEncodingInfo()
	}
	if info.Format != EncodingLinear16 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, info.Format.Name())
	}

	samples := make([]int, 0, totalLength(chunks)/2)
	var leftover []byte
	for _, chunk := range chunks {
		if len(leftover) > 0 {
			chunk = append(leftover, chunk...)
			leftover = nil
		}
		for i := 0; i+1 < len(chunk); i += 2 {
			samples = append(samples, int(int16(binary.LittleEndian.Uint16(chunk[i:]))))
		}
		if len(chunk)%2 == 1 {
			leftover = []byte{chunk[len(chunk)-1]}
		}
	}

	// wav.Encoder needs to seek back to patch the header sizes
	file, err := os.CreateTemp("", "ema-chat-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary wav file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	encoder := wav.NewEncoder(file, info.SampleRate, 16, info.NumChannels(), wavFormatPCM)
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: info.NumChannels(), SampleRate: info.SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buffer); err != nil {
		return nil, fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise wav file: %w", err)
	}

	data, err := os.ReadFile(file.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read temporary wav file: %w", err)
	}
	return data, nil
}

// DecodeWAV returns the encoding and little-endian linear16 PCM of a WAV file.
func DecodeWAV(data []byte) (EncodingInfo, []byte, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return EncodingInfo{}, nil, ErrInvalidWAV
	}
	if decoder.BitDepth != 16 {
		return EncodingInfo{}, nil, fmt.Errorf("%w: %d bit samples", ErrUnsupportedEncoding, decoder.BitDepth)
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return EncodingInfo{}, nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	pcm := make([]byte, len(buffer.Data)*2)
	for i, sample := range buffer.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample)))
	}

	info := EncodingInfo{
		SampleRate: int(decoder.SampleRate),
		Format:     EncodingLinear16,
		Channels:   int(decoder.NumChans),
	}
	return info, pcm, nil
}

func totalLength(chunks [][]byte) int {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	return total
}
