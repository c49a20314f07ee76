package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rcDeck = `rc lowpass
V1 in 0 DC 1 AC 1
R1 in out 1k
C1 out 0 1u
.op
.ac DEC 5 10 100k
.tf V(out) V1
.end
`

func writeDeck(t *testing.T, deck string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.cir")
	require.NoError(t, os.WriteFile(path, []byte(deck), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRun_AllDirectives(t *testing.T) {
	out, err := execute(t, "run", writeDeck(t, rcDeck))
	require.NoError(t, err)

	assert.Contains(t, out, "Circuit: rc lowpass")
	assert.Regexp(t, `V\(out\) = (1\.000 V|1000\.000 mV)`, out)
	assert.Contains(t, out, "AC Analysis Results (21 frequency points)")
	assert.Contains(t, out, "H(s) = V(out)/V1 = ")
	assert.Contains(t, out, "Poles (1):")
	assert.Contains(t, out, "DC gain: 1\n")
}

func TestRun_NoDirectives(t *testing.T) {
	out, err := execute(t, "run", writeDeck(t, "empty\nR1 a 0 1k\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "no analysis directive")
}

func TestRun_ParseErrorNamesLine(t *testing.T) {
	_, err := execute(t, "run", writeDeck(t, "bad\nR1 a 0 1k\nQ1 a b c npn\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestTF_OutputFlagOverridesDeck(t *testing.T) {
	path := writeDeck(t, rcDeck)

	out, err := execute(t, "tf", path, "--output", "V(in)")
	require.NoError(t, err)
	assert.Contains(t, out, "V(in)/V1")

	_, err = execute(t, "tf", writeDeck(t, "no tf\nV1 a 0 1\nR1 a 0 1k\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")

	_, err = execute(t, "tf", path, "--output", "V(missing)")
	assert.Error(t, err)
}

func TestBode_WritesImage(t *testing.T) {
	deck := writeDeck(t, rcDeck)
	dir := t.TempDir()

	png := filepath.Join(dir, "rc.png")
	out, err := execute(t, "bode", deck, "-o", png, "--points", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+png)
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	svg := filepath.Join(dir, "rc.svg")
	_, err = execute(t, "bode", deck, "-o", svg)
	require.NoError(t, err)
	data, err = os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	_, err = execute(t, "bode", deck, "-o", filepath.Join(dir, "rc.gif"))
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: loud\n"), 0o644))

	_, err := execute(t, "--config", cfg, "run", writeDeck(t, rcDeck))
	assert.Error(t, err)
}
