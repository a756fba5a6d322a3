package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	gowav "github.com/go-audio/wav"
)

// Supported PCM container format. The sample rate is a run setting; channel
// count and bit depth are fixed.
const (
	ExpectedChannels = 1
	ExpectedBitDepth = 16
	pcmFormat        = 1
)

// ErrFormatMismatch is returned when a decoded WAV does not match the expected format.
var ErrFormatMismatch = errors.New("WAV format mismatch")

// Waveform is a decoded mono clip. Samples hold raw 16-bit PCM values widened
// to float64 so they can be mixed without rescaling.
type Waveform struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the clip length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}

	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Info describes a WAV file from its header alone.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// Duration returns the length in seconds implied by the header.
func (i Info) Duration() float64 {
	if i.SampleRate <= 0 {
		return 0
	}

	return float64(i.Frames) / float64(i.SampleRate)
}

// Probe reads the header of the WAV file at path and the size of its data
// chunk. Non-PCM files are rejected the same way ReadWAV rejects them.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("%s: invalid WAV file", path)
	}
	if dec.WavAudioFormat != pcmFormat {
		return Info{}, fmt.Errorf("%w: %s: audio format %d, want PCM", ErrFormatMismatch, path, dec.WavAudioFormat)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	// PCMLen is only known once the decoder has reached the data chunk.
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%s: locate PCM data: %w", path, err)
	}

	blockAlign := info.Channels * info.BitDepth / 8
	if blockAlign > 0 {
		info.Frames = int(dec.PCMLen()) / blockAlign
	}

	return info, nil
}

// ReadWAV decodes a mono 16-bit PCM WAV file. The caller decides whether the
// sample rate is acceptable.
func ReadWAV(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Waveform{}, fmt.Errorf("%s: invalid WAV file", path)
	}

	if dec.WavAudioFormat != pcmFormat {
		return Waveform{}, fmt.Errorf("%w: %s: audio format %d, want PCM", ErrFormatMismatch, path, dec.WavAudioFormat)
	}
	if dec.NumChans != ExpectedChannels {
		return Waveform{}, fmt.Errorf("%w: %s: channels %d, want %d", ErrFormatMismatch, path, dec.NumChans, ExpectedChannels)
	}
	if dec.BitDepth != ExpectedBitDepth {
		return Waveform{}, fmt.Errorf("%w: %s: bit depth %d, want %d", ErrFormatMismatch, path, dec.BitDepth, ExpectedBitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("reading PCM data from %s: %w", path, err)
	}

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v)
	}

	return Waveform{SampleRate: int(dec.SampleRate), Samples: samples}, nil
}

// DecodeWAV decodes WAV bytes and returns float32 PCM samples.
// It validates that the format is mono 16-bit PCM at sampleRate.
func DecodeWAV(data []byte, sampleRate int) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty WAV input")
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if int(dec.SampleRate) != sampleRate {
		return nil, fmt.Errorf("%w: sample rate %d, want %d", ErrFormatMismatch, dec.SampleRate, sampleRate)
	}
	if dec.NumChans != ExpectedChannels {
		return nil, fmt.Errorf("%w: channels %d, want %d", ErrFormatMismatch, dec.NumChans, ExpectedChannels)
	}
	if dec.BitDepth != ExpectedBitDepth {
		return nil, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, ExpectedBitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	return buf.Data, nil
}
