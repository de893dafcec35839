// Package ndjson implements newline-delimited JSON framing for AgentWire
// event streams on non-HTTP transports: one JSON-encoded event per line.
package ndjson

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Encoder writes one event per line
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes a single event followed by a newline
func (e *Encoder) Encode(event events.Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("event encoding failed: %w", err)
	}

	if _, err := e.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("ndjson write failed: %w", err)
	}

	return nil
}

// Decoder reads one event per line, buffering partial lines until the
// newline boundary arrives. Undecodable lines are dropped with a logged
// error; they never terminate the stream.
type Decoder struct {
	br     *bufio.Reader
	logger *logrus.Logger
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		br:     bufio.NewReader(r),
		logger: logrus.StandardLogger(),
	}
}

// WithLogger sets a custom logger for the decoder
func (d *Decoder) WithLogger(logger *logrus.Logger) *Decoder {
	d.logger = logger
	return d
}

// Decode returns the next valid event. It returns io.EOF once the stream
// ends; a partial trailing line without a newline is discarded.
func (d *Decoder) Decode() (events.Event, error) {
	for {
		line, err := d.br.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		event, err := events.EventFromJSON(line)
		if err != nil {
			d.logger.WithError(err).Warn("Dropping undecodable NDJSON line")
			continue
		}

		return event, nil
	}
}
