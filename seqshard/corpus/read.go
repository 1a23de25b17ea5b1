package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
)

// maxLineBytes bounds a single corpus line.
const maxLineBytes = 16 * 1024 * 1024

// ReadLines loads a UTF-8 text file fully into memory, one entry per line.
// Files ending in .gz or .xz are decompressed on the fly. Lines end at \n,
// \r\n, a lone \r, \v, \f, \x1c-\x1e, U+0085, U+2028 or U+2029; the
// terminator is stripped and a trailing one does not add an empty line.
// The second return value is the on-disk size of the file.
func ReadLines(path string) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat corpus %s: %w", path, err)
	}

	var reader io.Reader = f
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("gzip error: %w", err)
		}
		defer gr.Close()
		reader = gr
	} else if strings.HasSuffix(lower, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("xz error: %w", err)
		}
		reader = xr
	}

	lines := make([]string, 0, 1024)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(scanLines)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return lines, fi.Size(), nil
}

// scanLines is a bufio.SplitFunc that, unlike bufio.ScanLines, also breaks
// on a lone \r and on the other line boundaries listed in ReadLines.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return 0, nil, nil
		}
		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			// need one more byte to tell \r from \r\n
			if !atEOF {
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return i + size, data[:i], nil
		}
		i += size
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
