package chain

// levenshtein computes the edit distance between two strings, used to
// produce "did you mean" suggestions for a mismatched header. An
// unrecognised keyword-only key gets no suggestion: it ends keyword-only
// binding (see analyseKeywordOnly).
func levenshtein(str string, tgt string) int {
	s := []rune(str)
	t := []rune(tgt)

	if len(s) == 0 {
		return len(t)
	}

	if len(t) == 0 {
		return len(s)
	}

	dists := make([][]int, len(s)+1)
	for i := range dists {
		dists[i] = make([]int, len(t)+1)
		dists[i][0] = i
	}

	for j := 0; j <= len(t); j++ {
		dists[0][j] = j
	}

	for sidx, sc := range s {
		for tidx, tc := range t {
			if sc == tc {
				dists[sidx+1][tidx+1] = dists[sidx][tidx]
			} else {
				dists[sidx+1][tidx+1] = dists[sidx][tidx] + 1
				if dists[sidx+1][tidx] < dists[sidx+1][tidx+1] {
					dists[sidx+1][tidx+1] = dists[sidx+1][tidx] + 1
				}
				if dists[sidx][tidx+1] < dists[sidx+1][tidx+1] {
					dists[sidx+1][tidx+1] = dists[sidx][tidx+1] + 1
				}
			}
		}
	}

	return dists[len(s)][len(t)]
}

// closestChoice returns the candidate in choices with the smallest edit
// distance to cmd, and that distance.
func closestChoice(cmd string, choices []string) (string, int) {
	if len(choices) == 0 {
		return "", 0
	}

	mincmd := -1
	mindist := -1

	for i, c := range choices {
		l := levenshtein(cmd, c)

		if mincmd < 0 || l < mindist {
			mindist = l
			mincmd = i
		}
	}

	return choices[mincmd], mindist
}

// similarity converts an edit distance between cmd and its closest choice
// into a 0..1 score (1 = identical), for threshold comparisons.
func similarity(cmd string, choices []string) (string, float64) {
	closest, dist := closestChoice(cmd, choices)
	if closest == "" {
		return "", 0
	}

	longest := len([]rune(cmd))
	if n := len([]rune(closest)); n > longest {
		longest = n
	}

	if longest == 0 {
		return closest, 1
	}

	return closest, 1 - float64(dist)/float64(longest)
}
