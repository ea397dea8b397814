package align

import "autocaptions/internal/recognizer"

// interpolateRuns assigns intervals to every run of consecutive unresolved
// tokens. A middle run is spread across the gap between its resolved
// neighbours; runs at the transcript boundaries are anchored by the lead and
// trail offsets. Within a run the span is divided proportionally by surface
// character count.
func interpolateRuns(aligned []AlignedToken, words []recognizer.Word, opts Options) {
	for i := 0; i < len(aligned); {
		if aligned[i].Tag != TagInterpolated {
			i++
			continue
		}
		runStart := i
		for i < len(aligned) && aligned[i].Tag == TagInterpolated {
			i++
		}
		runEnd := i

		var spanStart, spanEnd float64
		switch {
		case runStart == 0 && runEnd == len(aligned):
			// Nothing resolved at all; anchor on the raw word stream.
			spanStart = words[0].Start - opts.LeadSeconds
			spanEnd = words[len(words)-1].End + opts.TrailSeconds
		case runStart == 0:
			spanEnd = aligned[runEnd].Start
			spanStart = spanEnd - opts.LeadSeconds
		case runEnd == len(aligned):
			spanStart = aligned[runStart-1].End
			spanEnd = spanStart + opts.TrailSeconds
		default:
			spanStart = aligned[runStart-1].End
			spanEnd = aligned[runEnd].Start
		}
		if spanStart < 0 {
			spanStart = 0
		}
		fillRun(aligned[runStart:runEnd], spanStart, spanEnd)
	}
}

// fillRun splits [start, end] across the run proportionally by character
// count. A zero-width span collapses every interval onto the same instant,
// which keeps monotonicity without inventing time.
func fillRun(run []AlignedToken, start, end float64) {
	if end < start {
		end = start
	}
	total := 0
	for _, token := range run {
		total += len(token.Surface)
	}
	span := end - start
	cursor := start
	for k := range run {
		var width float64
		if total > 0 {
			width = span * float64(len(run[k].Surface)) / float64(total)
		} else {
			width = span / float64(len(run))
		}
		run[k].Start = cursor
		run[k].End = cursor + width
		cursor = run[k].End
	}
	// Absorb floating point drift so the run closes exactly on its anchor.
	run[len(run)-1].End = end
}
