// Package capture reads bit-level line captures for offline replay.
//
// The format is one character per bit period: '0' for low, '1' for high.
// Whitespace is ignored, '#' starts a comment running to end of line. A
// capture of a break followed by a 0x55 byte looks like:
//
//	# break, release, sync byte
//	0000000000000 1
//	0 10101010 1
package capture

import (
	"bufio"
	"fmt"
	"io"
)

// Parse reads a capture into one level per bit period.
func Parse(r io.Reader) ([]bool, error) {
	var levels []bool
	br := bufio.NewReader(r)
	line := 1
	comment := false
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			return levels, nil
		}
		if err != nil {
			return nil, err
		}
		switch {
		case c == '\n':
			line++
			comment = false
		case comment:
		case c == '#':
			comment = true
		case c == '0':
			levels = append(levels, false)
		case c == '1':
			levels = append(levels, true)
		case c == ' ' || c == '\t' || c == '\r':
		default:
			return nil, fmt.Errorf("capture: line %d: unexpected character %q", line, c)
		}
	}
}
