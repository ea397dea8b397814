package align

import (
	"autocaptions/internal/services"
	"autocaptions/internal/transcript"
)

// traceAlignment runs the edit-distance DP and returns, for every canonical
// token index, the index of its paired recognized word or -1 when the token
// has no timed counterpart. Recognized words without a canonical counterpart
// are discarded.
//
// The cost table is a flat (n+1)*(m+1) arena indexed i*(m+1)+j. Costs:
// match 0, substitute 1, delete-from-canonical 1, insert-in-recognized 1.
func traceAlignment(tokens []transcript.Token, normalized []string) ([]int, error) {
	n := len(tokens)
	m := len(normalized)
	width := m + 1

	cost := make([]int, (n+1)*width)
	for j := 1; j <= m; j++ {
		cost[j] = j
	}
	for i := 1; i <= n; i++ {
		cost[i*width] = i
	}
	for i := 1; i <= n; i++ {
		row := i * width
		prev := row - width
		for j := 1; j <= m; j++ {
			diag := cost[prev+j-1]
			if tokens[i-1].Normalized != normalized[j-1] {
				diag++
			}
			best := diag
			if up := cost[prev+j] + 1; up < best {
				best = up
			}
			if left := cost[row+j-1] + 1; left < best {
				best = left
			}
			cost[row+j] = best
		}
	}

	// Backtrace, preferring match > substitute > delete > insert on ties so
	// as few tokens as possible fall back to interpolation.
	mapping := make([]int, n)
	for i := range mapping {
		mapping[i] = -1
	}
	i, j := n, m
	for i > 0 || j > 0 {
		here := cost[i*width+j]
		switch {
		case i > 0 && j > 0 && tokens[i-1].Normalized == normalized[j-1] && here == cost[(i-1)*width+j-1]:
			mapping[i-1] = j - 1
			i--
			j--
		case i > 0 && j > 0 && tokens[i-1].Normalized != normalized[j-1] && here == cost[(i-1)*width+j-1]+1:
			mapping[i-1] = j - 1
			i--
			j--
		case i > 0 && here == cost[(i-1)*width+j]+1:
			i--
		case j > 0 && here == cost[i*width+j-1]+1:
			j--
		default:
			return nil, services.Wrap(services.ErrInvariant, "aligning", "backtrace",
				"edit-distance table admits no path; alignment state is corrupt", nil)
		}
	}
	return mapping, nil
}
