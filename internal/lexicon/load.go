package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/robalobadob/hangman/assets"
)

// Load reads one word per line from r and builds a Lexicon.
func Load(r io.Reader) (*Lexicon, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return Build(lines)
}

// LoadFile builds a Lexicon from the word file at path.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default builds a Lexicon from the dictionary embedded in the binary.
func Default() (*Lexicon, error) {
	lines, err := assets.WordLines()
	if err != nil {
		return nil, fmt.Errorf("embedded words: %w", err)
	}
	return Build(lines)
}
