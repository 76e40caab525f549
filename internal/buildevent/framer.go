package buildevent

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Banner lines the build tool prints outside structured frames. Each one
// closes the frame it ends.
const (
	VerbosityBanner  = "Logging verbosity is set to:"
	BuildOrderBanner = "Building the projects in this solution one at a time."
)

// Framer splits a line stream into frames. A frame opens at a line that is
// a bare opening brace (indentation allowed) or that starts an object with a
// quoted key, and ends at a line that is exactly a closing brace or starts
// with one of the banners. An object written on a single line is a frame of
// its own. Whatever is buffered when a new object opens is closed off first,
// so text never merges into the object that follows, even text that itself
// starts with a brace such as a GUID.
type Framer struct {
	buf     []string
	inFrame bool
}

// Push feeds one line without its terminator and returns the frames it
// completed, in order.
func (f *Framer) Push(line string) []string {
	var frames []string

	if f.opens(line) {
		if frame, ok := f.flush(); ok {
			frames = append(frames, frame)
		}
		f.inFrame = true
	}

	f.buf = append(f.buf, line)

	if isBoundary(line) || f.singleLineObject(line) {
		if frame, ok := f.flush(); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Finish returns whatever is still buffered at end of stream.
func (f *Framer) Finish() (string, bool) {
	return f.flush()
}

func (f *Framer) flush() (string, bool) {
	defer func() {
		f.buf = f.buf[:0]
		f.inFrame = false
	}()
	frame := strings.Join(f.buf, "\n")
	if strings.TrimSpace(frame) == "" {
		return "", false
	}
	return frame, true
}

// opens reports whether line starts a new object. Inside a frame only an
// unindented bare brace counts; indented braces belong to nested values.
func (f *Framer) opens(line string) bool {
	if f.inFrame {
		return strings.TrimRight(line, " \t") == "{"
	}
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "{")
	if !ok {
		return false
	}
	rest = strings.TrimLeft(rest, " \t")
	return rest == "" || rest[0] == '"' || gjson.Valid(trimmed)
}

// singleLineObject reports a frame that opened and closed on the same line.
func (f *Framer) singleLineObject(line string) bool {
	return f.inFrame && len(f.buf) == 1 && strings.HasSuffix(strings.TrimSpace(line), "}") && gjson.Valid(line)
}

func isBoundary(line string) bool {
	if strings.TrimRight(line, " \t") == "}" {
		return true
	}
	return strings.HasPrefix(line, VerbosityBanner) || strings.HasPrefix(line, BuildOrderBanner)
}
