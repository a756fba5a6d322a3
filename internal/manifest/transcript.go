package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-noisy-speech/internal/corpus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TranscriptSuffix is appended to reader-chapter to name a transcript file.
const TranscriptSuffix = ".trans.txt"

var (
	ErrTranscriptNotFound  = errors.New("transcript not found")
	ErrAmbiguousTranscript = errors.New("ambiguous transcript")
)

// TranscriptPath returns the transcript file that holds voicePath's utterance:
// reader-chapter.trans.txt in the voice clip's directory.
func TranscriptPath(baseDir, voicePath string) (string, error) {
	id, err := corpus.ParseVoiceID(voicePath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(corpus.Resolve(baseDir, voicePath))

	return filepath.Join(dir, id.Group()+TranscriptSuffix), nil
}

// TranscriptResolver looks up utterance transcripts, reading each
// reader-chapter file once. Not safe for concurrent use.
type TranscriptResolver struct {
	baseDir string
	caser   cases.Caser
	groups  map[string][]string
}

// NewTranscriptResolver resolves relative voice paths against baseDir.
func NewTranscriptResolver(baseDir string) *TranscriptResolver {
	return &TranscriptResolver{
		baseDir: baseDir,
		caser:   cases.Lower(language.Und),
		groups:  make(map[string][]string),
	}
}

// CachedGroups reports how many transcript files have been read.
func (r *TranscriptResolver) CachedGroups() int {
	return len(r.groups)
}

// Resolve returns the normalized transcript for the utterance at voicePath:
// the text after its id, lowercased, with commas removed. Exactly one line
// must start with the id as a whole token.
func (r *TranscriptResolver) Resolve(voicePath string) (string, error) {
	id, err := corpus.ParseVoiceID(voicePath)
	if err != nil {
		return "", err
	}

	lines, err := r.group(id.Group(), voicePath)
	if err != nil {
		return "", err
	}

	key := id.String()

	var (
		text    string
		matches int
	)
	for _, line := range lines {
		first, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		if first != key {
			continue
		}
		matches++
		text = rest
	}

	switch matches {
	case 0:
		return "", fmt.Errorf("%w: no line for %s", ErrTranscriptNotFound, key)
	case 1:
	default:
		return "", fmt.Errorf("%w: %d lines for %s", ErrAmbiguousTranscript, matches, key)
	}

	text = r.caser.String(strings.TrimSpace(text))

	return strings.ReplaceAll(text, ",", ""), nil
}

func (r *TranscriptResolver) group(group, voicePath string) ([]string, error) {
	if lines, ok := r.groups[group]; ok {
		return lines, nil
	}

	path, err := TranscriptPath(r.baseDir, voicePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, path)
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}

	r.groups[group] = lines

	return lines, nil
}
