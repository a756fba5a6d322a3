package main

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/example/go-noisy-speech/internal/testutil"
)

const testRate = 8000

type testCorpus struct {
	*testutil.Corpus
	voiceInventory      string
	backgroundInventory string
}

func newTestCorpus(t *testing.T, voices int) testCorpus {
	t.Helper()

	c := testutil.NewCorpus(t, testRate)
	for i := range voices {
		utt := strconv.Itoa(1000 + i)
		c.AddVoice("84", "121123", utt, testutil.Tone(testRate/2+i*100, 6000), "GO DO YOU HEAR")
	}
	c.AddBackground("street", testutil.Ramp(3*testRate, 7))
	c.AddBackground("cafe", testutil.Tone(3*testRate, 2000))
	c.AddBackground("wind", testutil.Ramp(3*testRate, -5))
	voiceInv, bgInv := c.WriteInventories()

	return testCorpus{Corpus: c, voiceInventory: voiceInv, backgroundInventory: bgInv}
}

func (c testCorpus) flags() []string {
	return []string{
		"--paths-voice-inventory", c.voiceInventory,
		"--paths-background-inventory", c.backgroundInventory,
		"--paths-base-dir", c.Dir,
		"--audio-sample-rate", strconv.Itoa(testRate),
		"--generate-progress=false",
		"--log-level", "error",
	}
}

// execute runs the root command and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })

	var stdout, stderr bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}

	return stdout.String(), err
}
