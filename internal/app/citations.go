package app

import (
	"fmt"
	"sort"
	"strings"
)

// InjectCitations rewrites response text so each grounded span is followed by
// numbered source links. Supports are processed in descending endIndex order;
// inserting at a larger offset never shifts the smaller offsets still to be
// processed, which is what keeps every citation at its original logical
// position. Offsets are byte offsets into text.
//
// The transform never fails a render: any panic degrades to returning the
// uncited input.
func InjectCitations(text string, md *GroundingMetadata) (out string) {
	out = text
	// Last-resort backstop. Every offset below is bounds-checked before it
	// is used, so no known input reaches this; it exists so a future edit
	// that breaks an invariant costs a citation, not a render.
	defer func() {
		if recover() != nil {
			out = text
		}
	}()

	if text == "" || md == nil || len(md.GroundingSupports) == 0 {
		return text
	}

	supports := make([]GroundingSupport, len(md.GroundingSupports))
	copy(supports, md.GroundingSupports)
	sort.SliceStable(supports, func(i, j int) bool {
		return segmentEnd(supports[i]) > segmentEnd(supports[j])
	})

	// Clamp against the original length, never the grown string: a clamp
	// that tracked the insertions would let a second out-of-range support
	// splice into a marker inserted before it.
	base := len(text)

	processed := text
	for _, support := range supports {
		if support.Segment == nil || len(support.GroundingChunkIndices) == 0 {
			continue
		}

		links := citationLinks(support.GroundingChunkIndices, md.GroundingChunks)
		if links == "" {
			continue
		}

		// Offsets past the end of the text are clamped rather than rejected;
		// the citation lands after the last byte it could have referred to.
		end := support.Segment.EndIndex
		if end < 0 {
			continue
		}
		if end > base {
			end = base
		}
		processed = processed[:end] + " " + links + processed[end:]
	}
	return processed
}

func segmentEnd(s GroundingSupport) int {
	if s.Segment == nil {
		return 0
	}
	return s.Segment.EndIndex
}

// citationLinks renders one marker per chunk index, numbered index+1, in the
// order the support lists them. Indices that do not resolve to a chunk are
// dropped instead of corrupting the output.
func citationLinks(indices []int, chunks []GroundingChunk) string {
	var b strings.Builder
	for _, idx := range indices {
		if idx < 0 || idx >= len(chunks) {
			continue
		}
		uri := chunks[idx].URI
		if uri == "" {
			continue
		}
		fmt.Fprintf(&b, "[%d](%s)", idx+1, uri)
	}
	return b.String()
}
