package prompt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

const digestPrefix = "sha256:"

// sourceDigest fingerprints a template source for the prompt_digest column of
// stored forecasts. Line endings and trailing blank space are normalized so
// an editor re-save does not look like a prompt change.
func sourceDigest(data []byte) string {
	norm := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	norm = bytes.TrimRight(norm, " \t\n")
	sum := sha256.Sum256(norm)
	return digestPrefix + hex.EncodeToString(sum[:])
}
