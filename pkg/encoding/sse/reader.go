package sse

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Reader reassembles SSE frames from an ordered byte stream. Partial input
// is buffered until a complete frame boundary (a blank line) is observed,
// so frames split across read boundaries decode correctly.
type Reader struct {
	br   *bufio.Reader
	data bytes.Buffer
}

// NewReader creates a frame reader over r
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br: bufio.NewReader(r),
	}
}

// Next returns the data payload of the next complete frame. It returns
// io.EOF once the stream ends; an incomplete trailing frame is discarded
// per the SSE convention.
func (r *Reader) Next() ([]byte, error) {
	for {
		line, err := r.br.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}

		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))

		if len(line) == 0 {
			if r.data.Len() > 0 {
				payload := make([]byte, r.data.Len())
				copy(payload, r.data.Bytes())
				r.data.Reset()
				return payload, nil
			}
			continue
		}

		// Comment lines keep the connection alive and carry no data.
		if line[0] == ':' {
			continue
		}

		if value, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			value = bytes.TrimPrefix(value, []byte(" "))
			if r.data.Len() > 0 {
				r.data.WriteByte('\n')
			}
			r.data.Write(value)
		}
		// Other fields (event:, id:, retry:) are not part of the protocol
		// contract and are ignored.
	}
}

// Decoder yields decoded events from an SSE byte stream. Frames that fail
// the event codec are dropped with a logged error; they never terminate
// the stream.
type Decoder struct {
	reader *Reader
	logger *logrus.Logger
}

// NewDecoder creates an event decoder over r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		reader: NewReader(r),
		logger: logrus.StandardLogger(),
	}
}

// WithLogger sets a custom logger for the decoder
func (d *Decoder) WithLogger(logger *logrus.Logger) *Decoder {
	d.logger = logger
	return d
}

// Decode returns the next valid event, skipping undecodable frames. It
// returns io.EOF once the underlying stream ends.
func (d *Decoder) Decode() (events.Event, error) {
	for {
		payload, err := d.reader.Next()
		if err != nil {
			return nil, err
		}

		event, err := events.EventFromJSON(payload)
		if err != nil {
			d.logger.WithError(err).Warn("Dropping undecodable SSE frame")
			continue
		}

		return event, nil
	}
}
