package cli

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Think segment delimiters emitted by reasoning models, and the glyph
// printed in their place.
const (
	ThinkOpen    = "<think>"
	ThinkClose   = "</think>"
	ThinkMarker  = "🧠"
	DefaultWidth = 60
)

// ThinkFormatter word-wraps a token stream to a fixed width and renders
// the text between ThinkOpen and ThinkClose in cyan.
//
// Tokens arrive through WriteToken; Close must be called once when the
// stream ends. A word is printed only once it is known to be complete, so
// words and delimiters may be split across any number of tokens.
// ThinkFormatter is not safe for concurrent use.
type ThinkFormatter struct {
	writer *StreamingWriter
	width  int
	color  string

	pending   string // text received but not yet placed on a line
	line      string
	lineWidth int
	thinking  bool
}

// NewThinkFormatter creates a formatter writing lines of at most width
// cells to writer. A non-positive width selects DefaultWidth.
func NewThinkFormatter(writer *StreamingWriter, width int) *ThinkFormatter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &ThinkFormatter{
		writer: writer,
		width:  width,
		color:  ColorCyan,
	}
}

// Width returns the configured line width.
func (f *ThinkFormatter) Width() int {
	return f.width
}

// Thinking reports whether the stream is inside a think segment.
func (f *ThinkFormatter) Thinking() bool {
	return f.thinking
}

// WriteToken consumes the next chunk of the stream.
func (f *ThinkFormatter) WriteToken(token string) {
	f.pending += token

	for {
		before, after, found := strings.Cut(f.pending, f.delimiter())
		if !found {
			break
		}
		f.wrap(strings.Fields(before))
		f.flushWithMarker()
		f.thinking = !f.thinking
		f.pending = after
	}

	cut := completePrefix(f.pending, f.delimiter())
	f.wrap(strings.Fields(f.pending[:cut]))
	f.pending = f.pending[cut:]
}

// Close flushes buffered text and the current line, then resets the
// formatter to its initial state.
func (f *ThinkFormatter) Close() {
	f.wrap(strings.Fields(f.pending))
	if f.line != "" {
		f.emit(f.line)
	}

	f.pending = ""
	f.line = ""
	f.lineWidth = 0
	f.thinking = false
}

func (f *ThinkFormatter) delimiter() string {
	if f.thinking {
		return ThinkClose
	}
	return ThinkOpen
}

// wrap places complete words on the current line, emitting the line
// whenever the next word does not fit.
func (f *ThinkFormatter) wrap(words []string) {
	for _, word := range words {
		w := runewidth.StringWidth(word)

		switch {
		case f.line == "":
			f.line, f.lineWidth = word, w
		case f.lineWidth+1+w > f.width:
			f.emit(f.line)
			f.line, f.lineWidth = word, w
		default:
			f.line += " " + word
			f.lineWidth += 1 + w
		}
	}
}

// flushWithMarker ends the current line with the marker glyph. The line
// keeps the style of the segment being left; the glyph is never styled.
func (f *ThinkFormatter) flushWithMarker() {
	if f.line == "" {
		f.writer.WriteLine(ThinkMarker)
	} else {
		f.writer.WriteLine(f.style(f.line) + " " + ThinkMarker)
	}
	f.line, f.lineWidth = "", 0
}

func (f *ThinkFormatter) emit(line string) {
	f.writer.WriteLine(f.style(line))
}

func (f *ThinkFormatter) style(line string) string {
	if f.thinking {
		return f.writer.Colorize(line, f.color)
	}
	return line
}

// completePrefix returns the length of the longest prefix of s that ends on
// a word boundary and cannot be the start of delim. The remainder may still
// grow into a longer word or into the delimiter.
func completePrefix(s, delim string) int {
	end := len(s) - partialSuffix(s, delim)
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return end
}

// partialSuffix returns the length of the longest proper prefix of delim
// that s ends with.
func partialSuffix(s, delim string) int {
	for n := min(len(delim)-1, len(s)); n > 0; n-- {
		if strings.HasSuffix(s, delim[:n]) {
			return n
		}
	}
	return 0
}
