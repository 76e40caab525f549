package buildevent

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/solvent/internal/logfields"
)

// Sink receives every event a Reassembler emits. It must not block.
type Sink func(Event)

// Reassembler turns one output channel into events.
type Reassembler struct {
	stream   Stream
	sink     Sink
	logger   *slog.Logger
	onDecode func(error)
	bufSize  int
}

// ReassemblerOption configures a Reassembler.
type ReassemblerOption func(*Reassembler)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l *slog.Logger) ReassemblerOption {
	return func(r *Reassembler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDecodeErrorHook is called for every frame that fell back to RawMessage
// because of a decode error.
func WithDecodeErrorHook(fn func(error)) ReassemblerOption {
	return func(r *Reassembler) { r.onDecode = fn }
}

// WithReadBufferSize sets the size of the line reader buffer. Lines longer
// than the buffer are still read whole.
func WithReadBufferSize(n int) ReassemblerOption {
	return func(r *Reassembler) {
		if n > 0 {
			r.bufSize = n
		}
	}
}

// NewReassembler creates a Reassembler for one channel.
func NewReassembler(stream Stream, sink Sink, opts ...ReassemblerOption) *Reassembler {
	r := &Reassembler{stream: stream, sink: sink, logger: slog.Default(), bufSize: 64 * 1024}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until end of stream, emitting one event per frame. End of
// stream is a normal return; any other read error is returned after the
// buffered text has been flushed.
func (r *Reassembler) Run(in io.Reader) error {
	br := bufio.NewReaderSize(in, r.bufSize)
	var framer Framer
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			for _, frame := range framer.Push(strings.TrimRight(line, "\r\n")) {
				r.emit(frame)
			}
		}
		if err != nil {
			if frame, ok := framer.Finish(); ok {
				r.emit(frame)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (r *Reassembler) emit(frame string) {
	e, err := Decode(frame)
	if err != nil && strings.HasPrefix(strings.TrimSpace(frame), "{") {
		r.logger.Debug("Build event frame fell back to raw message",
			logfields.Stream(r.stream.String()), logfields.Error(err))
		if r.onDecode != nil {
			r.onDecode(err)
		}
	}
	r.sink(e.withStream(r.stream))
}
