package classify

import (
	"fmt"
	"sort"
)

// Span is a classified byte range of the source.
type Span struct {
	Start int
	End   int
	Cat   TokenCategory
}

func (s Span) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

// Normalize clips spans to [0,n), drops empty ones, resolves overlaps in
// favour of the earlier span and fills gaps with TokenPlain, producing a
// gap-free cover of the input. Adjacent spans of one category are merged.
func Normalize(spans []Span, n int) []Span {
	if n <= 0 {
		return nil
	}

	clean := make([]Span, 0, len(spans))
	for _, span := range spans {
		start := max(span.Start, 0)
		end := min(span.End, n)
		if end <= start {
			continue
		}
		clean = append(clean, Span{Start: start, End: end, Cat: span.Cat})
	}

	sort.SliceStable(clean, func(i, j int) bool {
		if clean[i].Start == clean[j].Start {
			return clean[i].End < clean[j].End
		}
		return clean[i].Start < clean[j].Start
	})

	out := make([]Span, 0, len(clean)+2)
	cursor := 0
	for _, span := range clean {
		start := max(span.Start, cursor)
		end := span.End
		if end <= start {
			continue
		}
		if start > cursor {
			out = appendMerged(out, cursor, start, TokenPlain)
		}
		out = appendMerged(out, start, end, span.Cat)
		cursor = end
	}
	if cursor < n {
		out = appendMerged(out, cursor, n, TokenPlain)
	}
	return out
}

func appendMerged(spans []Span, start, end int, cat TokenCategory) []Span {
	if end <= start {
		return spans
	}
	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		if last.End == start && last.Cat == cat {
			last.End = end
			return spans
		}
	}
	return append(spans, Span{Start: start, End: end, Cat: cat})
}

// ApplyIdentifiersOnly maps every category without a naming role to
// TokenPlain, in place.
func ApplyIdentifiersOnly(spans []Span) []Span {
	for i := range spans {
		if !spans[i].Cat.Naming() {
			spans[i].Cat = TokenPlain
		}
	}
	return spans
}

// Validate checks that spans cover [0,n) contiguously, in order and without
// empty entries.
func Validate(spans []Span, n int) error {
	cursor := 0
	for i, span := range spans {
		if span.Start != cursor {
			return fmt.Errorf("span %d starts at %d, want %d", i, span.Start, cursor)
		}
		if span.End <= span.Start {
			return fmt.Errorf("span %d is empty at %d", i, span.Start)
		}
		cursor = span.End
	}
	if cursor != n {
		return fmt.Errorf("spans end at %d, input has %d bytes", cursor, n)
	}
	return nil
}

// Reconstruct concatenates the text of every span.
func Reconstruct(src []byte, spans []Span) []byte {
	out := make([]byte, 0, len(src))
	for _, span := range spans {
		out = append(out, src[span.Start:span.End]...)
	}
	return out
}
