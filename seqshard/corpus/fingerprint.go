package corpus

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// fingerprint hashes every line of src and, when present, tgt.
// A zero byte separates the two sides so (a, b) and (a+b, "") differ.
func fingerprint(src, tgt []string) string {
	h := blake3.New()
	for _, line := range src {
		io.WriteString(h, line)
		io.WriteString(h, "\n")
	}
	if tgt != nil {
		io.WriteString(h, "\x00")
		for _, line := range tgt {
			io.WriteString(h, line)
			io.WriteString(h, "\n")
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
