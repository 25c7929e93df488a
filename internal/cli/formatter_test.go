package cli

import (
	"bytes"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func render(width int, colorMode bool, tokens ...string) string {
	var buf bytes.Buffer
	writer := NewStreamingWriter(&buf)
	writer.SetColorMode(colorMode)

	f := NewThinkFormatter(writer, width)
	for _, token := range tokens {
		f.WriteToken(token)
	}
	f.Close()
	return buf.String()
}

func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// splitRandomly cuts s into chunks of 1..maxChunk bytes. Multi-byte runes
// may be cut; the formatter only looks at complete buffers.
func splitRandomly(rng *rand.Rand, s string, maxChunk int) []string {
	var chunks []string
	for len(s) > 0 {
		n := 1 + rng.Intn(maxChunk)
		if n > len(s) {
			n = len(s)
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}

func TestThinkFormatter_Wrap(t *testing.T) {
	got := lines(render(20, false, "The quick brown fox jumps over the lazy dog"))
	want := []string{"The quick brown fox", "jumps over the lazy", "dog"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrap mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_LongWordOwnLine(t *testing.T) {
	got := lines(render(5, false, "supercalifragilistic a supercalifragilistic b"))
	want := []string{"supercalifragilistic", "a", "supercalifragilistic", "b"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Long word mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_WordsPreservedAndWidthRespected(t *testing.T) {
	text := "Once upon a time,\tin a datacenter far away, a model woke up.\n" +
		"It read every token twice and then decided to write its own story. " +
		"Nobody noticed until the logs grew   unusually poetic… ¿qué? antidisestablishmentarianism!"
	rng := rand.New(rand.NewSource(42))

	for _, width := range []int{8, 20, 33, 60} {
		for i := 0; i < 20; i++ {
			out := render(width, false, splitRandomly(rng, text, 7)...)

			var words []string
			for _, line := range lines(out) {
				if line == "" {
					t.Fatalf("width %d: empty line emitted:\n%s", width, out)
				}
				lineWords := strings.Fields(line)
				if runewidth.StringWidth(line) > width && len(lineWords) > 1 {
					t.Errorf("width %d: line too long: %q", width, line)
				}
				if line != strings.Join(lineWords, " ") {
					t.Errorf("width %d: words must be separated by single spaces: %q", width, line)
				}
				words = append(words, lineWords...)
			}

			if !reflect.DeepEqual(words, strings.Fields(text)) {
				t.Fatalf("width %d: words changed:\nExpected: %q\nGot: %q", width, strings.Fields(text), words)
			}
		}
	}
}

func TestThinkFormatter_SplitTokensMatchWhole(t *testing.T) {
	text := "Hello there <think>Let me consider the request carefully.</think> Here is the answer you asked for."
	whole := render(24, true, text)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		if got := render(24, true, splitRandomly(rng, text, 5)...); got != whole {
			t.Fatalf("split delivery differs:\nExpected: %q\nGot: %q", whole, got)
		}
	}

	// one byte at a time
	var bytesOnly []string
	for i := 0; i < len(text); i++ {
		bytesOnly = append(bytesOnly, text[i:i+1])
	}
	if got := render(24, true, bytesOnly...); got != whole {
		t.Fatalf("byte-wise delivery differs:\nExpected: %q\nGot: %q", whole, got)
	}
}

func TestThinkFormatter_ThinkSegment(t *testing.T) {
	want := "Hello " + ThinkMarker + "\n" +
		"I am thinking " + ThinkMarker + "\n" +
		"Done.\n"

	if got := render(60, false, "Hello <think>I am thinking</think> Done."); got != want {
		t.Errorf("Think segment mismatch:\nExpected: %q\nGot: %q", want, got)
	}

	split := []string{"Hello <th", "in", "k>I am ", "thinking</", "think", "> Done."}
	if got := render(60, false, split...); got != want {
		t.Errorf("Split think segment mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_ThinkSegmentColored(t *testing.T) {
	want := "Hello " + ThinkMarker + "\n" +
		ColorCyan + "I am" + ColorReset + "\n" +
		ColorCyan + "thinking" + ColorReset + " " + ThinkMarker + "\n" +
		"Done.\n"

	if got := render(10, true, "Hello <think>I am thinking</think> Done."); got != want {
		t.Errorf("Colored think segment mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_MultiplePairs(t *testing.T) {
	want := strings.Join([]string{
		ThinkMarker,
		"a " + ThinkMarker,
		"b " + ThinkMarker,
		"c " + ThinkMarker,
		"d",
	}, "\n") + "\n"

	if got := render(60, false, "<think>a</think>b<think>c</think>d"); got != want {
		t.Errorf("Multiple pairs mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_UnbalancedDelimiters(t *testing.T) {
	// a closing tag outside a think segment is plain text
	if got := render(60, false, "a </think> b"); got != "a </think> b\n" {
		t.Errorf("unexpected output: %q", got)
	}

	// an unterminated segment stays highlighted until the stream ends
	want := ThinkMarker + "\n" + ColorCyan + "still thinking" + ColorReset + "\n"
	if got := render(60, true, "<think>still thinking"); got != want {
		t.Errorf("Unterminated segment mismatch:\nExpected: %q\nGot: %q", want, got)
	}

	// a delimiter prefix at the end of the stream is flushed as text
	if got := render(60, false, "almost <thi"); got != "almost <thi\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestThinkFormatter_HoldsIncompleteWord(t *testing.T) {
	var buf bytes.Buffer
	writer := NewStreamingWriter(&buf)
	writer.SetColorMode(false)
	f := NewThinkFormatter(writer, 60)

	f.WriteToken("hel")
	if f.line != "" || f.pending != "hel" {
		t.Fatalf("incomplete word must stay buffered: line=%q pending=%q", f.line, f.pending)
	}

	f.WriteToken("lo wor")
	if f.line != "hello" || f.pending != "wor" {
		t.Fatalf("expected complete word on line: line=%q pending=%q", f.line, f.pending)
	}

	f.WriteToken("ld\n")
	if f.line != "hello world" || f.pending != "" {
		t.Fatalf("newline must complete a word: line=%q pending=%q", f.line, f.pending)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be printed before the line fills: %q", buf.String())
	}

	f.Close()
	if buf.String() != "hello world\n" {
		t.Errorf("unexpected output after Close: %q", buf.String())
	}
	if f.Thinking() || f.line != "" || f.lineWidth != 0 {
		t.Error("Close must reset the formatter")
	}
}

func TestThinkFormatter_WideRunes(t *testing.T) {
	// each CJK rune occupies two cells
	got := lines(render(9, false, "你好 世界 再见"))
	want := []string{"你好 世界", "再见"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wide rune mismatch:\nExpected: %q\nGot: %q", want, got)
	}
}

func TestThinkFormatter_DefaultWidth(t *testing.T) {
	f := NewThinkFormatter(NewStreamingWriter(&bytes.Buffer{}), 0)
	if f.Width() != DefaultWidth {
		t.Errorf("expected default width %d, got %d", DefaultWidth, f.Width())
	}
}

func TestCompletePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abc ", 4},
		{"abc de", 4},
		{"abc <th", 4},
		{"abc de<th", 4},
		{"   ", 3},
	}

	for _, tt := range tests {
		if got := completePrefix(tt.in, ThinkOpen); got != tt.want {
			t.Errorf("completePrefix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
