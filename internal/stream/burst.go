package stream

import (
	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// Encode lays lines out as a burst: every rho in order, then every theta in
// the same order, as 16.16 words. The final word carries Last.
func Encode(lines []detection.Normal) []Word {
	n := len(lines)
	words := make([]Word, 2*n)
	for i, l := range lines {
		words[i].Data = FromFloat(l.Rho).Bits()
		words[n+i].Data = FromFloat(l.Theta).Bits()
	}
	if len(words) > 0 {
		words[len(words)-1].Last = true
	}
	return words
}

// Decode turns a burst back into lines. It is the receiving side of the
// link; vote counts do not travel and decode as zero.
//
// The burst must hold an even, non-zero number of words with Last set on
// the final one and nowhere else.
func Decode(words []Word) ([]detection.Normal, error) {
	if len(words) == 0 || len(words)%2 != 0 {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "stream.Decode",
			"burst of %d words is not rho/theta pairs", len(words))
	}
	for i, w := range words {
		if w.Last != (i == len(words)-1) {
			return nil, apperrors.New(apperrors.KindInvalidDimensions, "stream.Decode",
				"last flag misplaced at word %d of %d", i, len(words))
		}
	}

	n := len(words) / 2
	lines := make([]detection.Normal, n)
	for i := range lines {
		lines[i] = detection.Normal{
			Rho:   FixedFromBits(words[i].Data).Float(),
			Theta: FixedFromBits(words[n+i].Data).Float(),
		}
	}
	return lines, nil
}
