package types

import (
	"errors"
	"strings"

	"linbus-go/x/conv"
)

// Report line format used on the UART link between the device and a host:
//
//	F 55 3C 01 AA      one frame, bytes in uppercase hex
//	E queue_overrun    one error code
//
// Lines end in '\n'. The encoder is allocation-light so the device side can
// run it from a reused buffer.

type ReportKind uint8

const (
	ReportFrame ReportKind = iota
	ReportError
)

// Report is one parsed line.
type Report struct {
	Kind  ReportKind
	Bytes []byte // frame content for ReportFrame
	Code  string // error code for ReportError
}

var (
	ErrEmptyLine   = errors.New("empty report line")
	ErrBadReport   = errors.New("malformed report line")
	ErrUnknownKind = errors.New("unknown report kind")
)

// AppendFrameLine appends "F <hex bytes>\n" to dst.
func AppendFrameLine(dst []byte, frame []byte) []byte {
	dst = append(dst, 'F')
	for _, b := range frame {
		dst = append(dst, ' ')
		dst = conv.AppendByteHex(dst, b)
	}
	return append(dst, '\n')
}

// AppendErrorLine appends "E <code>\n" to dst.
func AppendErrorLine(dst []byte, code string) []byte {
	dst = append(dst, 'E', ' ')
	dst = append(dst, code...)
	return append(dst, '\n')
}

// ParseReportLine parses one line (without the trailing newline; a stray
// '\r' is tolerated).
func ParseReportLine(line string) (Report, error) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Report{}, ErrEmptyLine
	}
	switch fields[0] {
	case "F":
		bytes := make([]byte, 0, len(fields)-1)
		for _, f := range fields[1:] {
			if len(f) != 2 {
				return Report{}, ErrBadReport
			}
			b, ok := conv.HexByte(f[0], f[1])
			if !ok {
				return Report{}, ErrBadReport
			}
			bytes = append(bytes, b)
		}
		return Report{Kind: ReportFrame, Bytes: bytes}, nil
	case "E":
		if len(fields) != 2 {
			return Report{}, ErrBadReport
		}
		return Report{Kind: ReportError, Code: fields[1]}, nil
	}
	return Report{}, ErrUnknownKind
}
