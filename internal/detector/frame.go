package detector

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Frame is one estimator result: every hand seen in a single video frame.
// Timestamp is set by recordings (unix milliseconds) and left zero by live
// detection, where the pipeline clock stamps the frame.
type Frame struct {
	Timestamp int64           `json:"timestamp,omitempty"`
	Hands     []HandLandmarks `json:"hands"`
}

// ParseFrame decodes one JSON line produced by the estimator or a recording.
// Individual hands are not validated here; the feature extractor skips the
// malformed ones so that one bad hand does not discard the whole frame.
func ParseFrame(line []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}
	return f, nil
}

// maxFrameLine bounds one recorded frame line.
const maxFrameLine = 1 << 20

// FrameReader reads newline-delimited frames from a recording. Blank lines
// are skipped.
type FrameReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewFrameReader creates a FrameReader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLine)
	return &FrameReader{scanner: scanner}
}

// Next returns the next frame, or io.EOF after the last one.
func (fr *FrameReader) Next() (Frame, error) {
	for fr.scanner.Scan() {
		fr.line++
		line := bytes.TrimSpace(fr.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		f, err := ParseFrame(line)
		if err != nil {
			return Frame{}, fmt.Errorf("line %d: %w", fr.line, err)
		}
		return f, nil
	}

	if err := fr.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("line %d: %w", fr.line+1, err)
	}
	return Frame{}, io.EOF
}
