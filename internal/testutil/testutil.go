// Package testutil builds on-disk corpora and WAV fixtures for tests.
//
// Typical usage:
//
//	func TestGenerate(t *testing.T) {
//	    c := testutil.NewCorpus(t, 16000)
//	    c.AddVoice("84", "121123", "0000", testutil.Tone(32000, 1000), "THE QUICK BROWN FOX")
//	    c.AddBackground("rain", testutil.Tone(160000, 500))
//	    voices, backgrounds := c.WriteInventories()
//	    ...
//	}
package testutil

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// WriteWAV writes interleaved 16-bit PCM samples to path and returns path.
func WriteWAV(tb testing.TB, path string, sampleRate, channels int, samples []int16) string {
	tb.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		tb.Fatalf("mkdir for %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := gowav.NewEncoder(f, sampleRate, 16, channels, 1)

	err = enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: 16,
	})
	if err != nil {
		tb.Fatalf("encode %s: %v", path, err)
	}

	err = enc.Close()
	if err != nil {
		tb.Fatalf("close encoder for %s: %v", path, err)
	}

	return path
}

// WriteRawWAV writes a canonical 44-byte RIFF header followed by data, with
// no validation, so tests can build files an encoder would refuse to
// produce (non-PCM tags, empty data chunks).
func WriteRawWAV(tb testing.TB, path string, format, sampleRate, channels, bitDepth int, data []byte) string {
	tb.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		tb.Fatalf("mkdir for %s: %v", path, err)
	}

	blockAlign := channels * bitDepth / 8

	buf := make([]byte, 0, 44+len(data))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, "WAVEfmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(format))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate*blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(bitDepth))
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)

	err = os.WriteFile(path, buf, 0o644)
	if err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}

	return path
}

// Tone returns n samples of a square wave alternating between +amp and -amp
// every 8 samples.
func Tone(n int, amp int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		if (i/8)%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}

	return out
}

// Ramp returns n samples stepping from 0 by step, wrapping within int16.
func Ramp(n int, step int16) []int16 {
	out := make([]int16, n)
	var v int16
	for i := range out {
		out[i] = v
		v += step
	}

	return out
}

// Corpus is a throwaway LibriSpeech-shaped tree with voices, transcripts and
// background clips. Paths recorded in the inventories are relative to Dir.
type Corpus struct {
	tb          testing.TB
	Dir         string
	SampleRate  int
	Voices      []string
	Backgrounds []string

	transcripts map[string][]string
}

// NewCorpus creates an empty corpus in a temporary directory.
func NewCorpus(tb testing.TB, sampleRate int) *Corpus {
	tb.Helper()

	return &Corpus{
		tb:          tb,
		Dir:         tb.TempDir(),
		SampleRate:  sampleRate,
		transcripts: make(map[string][]string),
	}
}

// AddVoice writes a voice clip and records its transcript line. It returns
// the relative path stored in the voice inventory.
func (c *Corpus) AddVoice(reader, chapter, utterance string, samples []int16, transcript string) string {
	c.tb.Helper()

	id := fmt.Sprintf("%s-%s-%s", reader, chapter, utterance)
	rel := filepath.Join("voices", reader, chapter, id+".wav")
	WriteWAV(c.tb, filepath.Join(c.Dir, rel), c.SampleRate, 1, samples)

	group := filepath.Join("voices", reader, chapter, reader+"-"+chapter+".trans.txt")
	c.transcripts[group] = append(c.transcripts[group], id+" "+transcript)
	c.Voices = append(c.Voices, rel)

	return rel
}

// AddBackground writes a background clip and returns its relative path.
func (c *Corpus) AddBackground(name string, samples []int16) string {
	c.tb.Helper()

	rel := filepath.Join("backgrounds", name+".wav")
	WriteWAV(c.tb, filepath.Join(c.Dir, rel), c.SampleRate, 1, samples)
	c.Backgrounds = append(c.Backgrounds, rel)

	return rel
}

// WriteInventories flushes transcripts and both inventory documents and
// returns the absolute inventory paths.
func (c *Corpus) WriteInventories() (voices, backgrounds string) {
	c.tb.Helper()

	groups := make([]string, 0, len(c.transcripts))
	for g := range c.transcripts {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		body := strings.Join(c.transcripts[g], "\n") + "\n"

		err := os.WriteFile(filepath.Join(c.Dir, g), []byte(body), 0o644)
		if err != nil {
			c.tb.Fatalf("write transcript %s: %v", g, err)
		}
	}

	bg := make([]map[string]string, 0, len(c.Backgrounds))
	for _, b := range c.Backgrounds {
		bg = append(bg, map[string]string{"sample": b})
	}

	voices = c.writeJSON("all_voices.json", map[string][]string{"voice": append([]string{}, c.Voices...)})
	backgrounds = c.writeJSON("all_backgrounds.json", bg)

	return voices, backgrounds
}

func (c *Corpus) writeJSON(name string, v any) string {
	c.tb.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.tb.Fatalf("marshal %s: %v", name, err)
	}

	path := filepath.Join(c.Dir, name)

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		c.tb.Fatalf("write %s: %v", name, err)
	}

	return path
}
