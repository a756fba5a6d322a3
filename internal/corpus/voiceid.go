package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
)

// VoiceID identifies an utterance as reader-chapter-utterance, the naming
// used by LibriSpeech style corpora.
type VoiceID struct {
	Reader    string
	Chapter   string
	Utterance string
}

// ParseVoiceID derives the id from the basename of a voice path, minus its
// extension.
func ParseVoiceID(path string) (VoiceID, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.SplitN(stem, "-", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return VoiceID{}, fmt.Errorf("voice file %q: want reader-chapter-utterance name", base)
	}

	return VoiceID{Reader: parts[0], Chapter: parts[1], Utterance: parts[2]}, nil
}

// Group is the reader-chapter key shared by all utterances of one transcript file.
func (v VoiceID) Group() string {
	return v.Reader + "-" + v.Chapter
}

func (v VoiceID) String() string {
	return v.Reader + "-" + v.Chapter + "-" + v.Utterance
}
