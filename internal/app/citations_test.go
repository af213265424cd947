package app

import (
	"strings"
	"testing"
)

func TestInjectCitationsNoMetadata(t *testing.T) {
	text := "plain answer"
	if got := InjectCitations(text, nil); got != text {
		t.Fatalf("expected identity, got %q", got)
	}
	if got := InjectCitations(text, &GroundingMetadata{}); got != text {
		t.Fatalf("expected identity for empty metadata, got %q", got)
	}
	if got := InjectCitations("", &GroundingMetadata{
		GroundingChunks:   []GroundingChunk{{URI: "https://a"}},
		GroundingSupports: []GroundingSupport{{Segment: &GroundingSegment{EndIndex: 3}, GroundingChunkIndices: []int{0}}},
	}); got != "" {
		t.Fatalf("expected empty text to stay empty, got %q", got)
	}
}

func TestInjectCitationsSingleSupport(t *testing.T) {
	text := "aaaaaaaaaabbbbbbbbbb"
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 10}, GroundingChunkIndices: []int{0}},
		},
	}
	got := InjectCitations(text, md)
	want := "aaaaaaaaaa [1](https://a)bbbbbbbbbb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectCitationsOffsetsStayLogical(t *testing.T) {
	// Two supports into a 50-byte text. Listing them in ascending order
	// must not matter: descending processing keeps each marker at the
	// offset it referred to in the original text.
	text := strings.Repeat("x", 50)
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}, {URI: "https://b"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 10}, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 40}, GroundingChunkIndices: []int{1}},
		},
	}
	got := InjectCitations(text, md)
	want := strings.Repeat("x", 10) + " [1](https://a)" +
		strings.Repeat("x", 30) + " [2](https://b)" +
		strings.Repeat("x", 10)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectCitationsClampsPastEnd(t *testing.T) {
	text := "short answer"
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 500}, GroundingChunkIndices: []int{0}},
		},
	}
	got := InjectCitations(text, md)
	want := "short answer [1](https://a)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectCitationsClampsPastEndPair(t *testing.T) {
	// Both supports overshoot the text. Each must clamp to the original
	// length: a clamp that tracked the grown string would land the second
	// marker inside the first marker's URI. Clamped supports share the
	// end-of-text offset, so they append in processing order.
	text := "hello"
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}, {URI: "https://b"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 20}, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 10}, GroundingChunkIndices: []int{1}},
		},
	}
	got := InjectCitations(text, md)
	want := "hello [2](https://b) [1](https://a)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, text) {
		t.Fatalf("clamped markers must follow the full text: %q", got)
	}
}

func TestInjectCitationsClampDoesNotShiftInTextSupports(t *testing.T) {
	// One support overshoots, one sits inside the text. The in-text one
	// must stay at its original offset.
	text := "aaaaaaaaaabbbbbbbbbb"
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}, {URI: "https://b"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 10}, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 99}, GroundingChunkIndices: []int{1}},
		},
	}
	got := InjectCitations(text, md)
	want := "aaaaaaaaaa [1](https://a)bbbbbbbbbb [2](https://b)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectCitationsSkipsInvalidSupports(t *testing.T) {
	text := "the answer"
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}},
		GroundingSupports: []GroundingSupport{
			{Segment: nil, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 3}},
			{Segment: &GroundingSegment{EndIndex: -2}, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 3}, GroundingChunkIndices: []int{7}},
		},
	}
	if got := InjectCitations(text, md); got != text {
		t.Fatalf("invalid supports must not change text, got %q", got)
	}
}

func TestInjectCitationsMultipleIndicesKeepSupportOrder(t *testing.T) {
	text := "claim."
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}, {URI: "https://b"}, {URI: "https://c"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 6}, GroundingChunkIndices: []int{2, 0}},
		},
	}
	got := InjectCitations(text, md)
	want := "claim. [3](https://c)[1](https://a)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectCitationsDoesNotMutateInput(t *testing.T) {
	md := &GroundingMetadata{
		GroundingChunks: []GroundingChunk{{URI: "https://a"}, {URI: "https://b"}},
		GroundingSupports: []GroundingSupport{
			{Segment: &GroundingSegment{EndIndex: 1}, GroundingChunkIndices: []int{0}},
			{Segment: &GroundingSegment{EndIndex: 4}, GroundingChunkIndices: []int{1}},
		},
	}
	InjectCitations("abcde", md)
	if md.GroundingSupports[0].Segment.EndIndex != 1 || md.GroundingSupports[1].Segment.EndIndex != 4 {
		t.Fatal("metadata order was mutated")
	}
}
