package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"secretai/pkg/llm"
)

// StreamingWriter provides utilities for writing streaming content to output
type StreamingWriter struct {
	writer    io.Writer
	colorMode bool
}

func NewStreamingWriter(w io.Writer) *StreamingWriter {
	if w == nil {
		w = os.Stdout
	}
	return &StreamingWriter{
		writer:    w,
		colorMode: true,
	}
}

func (sw *StreamingWriter) SetColorMode(enabled bool) {
	sw.colorMode = enabled
}

// WriteLine writes a line to the output
func (sw *StreamingWriter) WriteLine(content string) {
	fmt.Fprintln(sw.writer, content)
}

// Colorize wraps content in color and reset codes if color mode is enabled
func (sw *StreamingWriter) Colorize(content, color string) string {
	if !sw.colorMode {
		return content
	}
	return color + content + ColorReset
}

// Flush ensures all content is written (useful for buffered writers)
func (sw *StreamingWriter) Flush() {
	if flusher, ok := sw.writer.(interface{ Flush() error }); ok {
		flusher.Flush()
	}
}

// ANSI Color codes
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
)

// StreamRenderer feeds a streamed LLM response through a ThinkFormatter.
// Reasoning reported outside the content is shown as a think segment.
type StreamRenderer struct {
	formatter *ThinkFormatter
	reasoning bool
}

func NewStreamRenderer(formatter *ThinkFormatter) *StreamRenderer {
	return &StreamRenderer{formatter: formatter}
}

// RenderDelta renders a single delta from the stream
func (sr *StreamRenderer) RenderDelta(delta *llm.Delta) {
	if delta.Reason != "" {
		if !sr.reasoning {
			sr.formatter.WriteToken(ThinkOpen)
			sr.reasoning = true
		}
		sr.formatter.WriteToken(delta.Reason)
	}

	if delta.Content != "" {
		if sr.reasoning {
			sr.formatter.WriteToken(ThinkClose)
			sr.reasoning = false
		}
		sr.formatter.WriteToken(delta.Content)
	}
}

// RenderComplete indicates the stream is complete
func (sr *StreamRenderer) RenderComplete() {
	if sr.reasoning {
		sr.formatter.WriteToken(ThinkClose)
		sr.reasoning = false
	}
	sr.formatter.Close()
	sr.formatter.writer.Flush()
}

// StreamContent streams content from a reader and renders it
func (sr *StreamRenderer) StreamContent(ctx context.Context, reader llm.StreamReader) (llm.Message, error) {
	defer reader.Close()

	accumulatedMsg := llm.Message{Role: llm.RoleAssistant}

	for {
		select {
		case <-ctx.Done():
			sr.RenderComplete()
			return accumulatedMsg, ctx.Err()
		default:
		}

		delta, err := reader.Recv()
		if err != nil {
			sr.RenderComplete()
			return accumulatedMsg, err
		}

		if delta.Done {
			break
		}

		sr.RenderDelta(delta)

		accumulatedMsg.Reason += delta.Reason
		accumulatedMsg.Content += delta.Content
	}

	sr.RenderComplete()
	return accumulatedMsg, nil
}
