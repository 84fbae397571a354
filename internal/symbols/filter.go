package symbols

import (
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Match is a symbol that matched a query, by index into the filtered slice.
type Match struct {
	Index int32
	Score int32
}

var filterParallelThreshold = 20_000
var filterMinChunkSize = 4_096

// Filter scores symbols against query and returns the matches best first.
// Matching ignores case but exact-case hits score higher. An empty query
// matches everything in input order.
func Filter(symbols []Symbol, query string) []Match {
	qRaw := TrimRunes(query)
	qLower := LowerRunes(qRaw)
	if len(qLower) == 0 {
		out := make([]Match, len(symbols))
		for i := range symbols {
			out[i] = Match{Index: int32(i)}
		}
		return out
	}

	caseSensitive := len(qRaw) == len(qLower)
	workers := filterWorkerCount(len(symbols))
	var out []Match
	if workers <= 1 {
		out = filterRange(symbols, 0, len(symbols), qRaw, qLower, caseSensitive)
	} else {
		parts := make([][]Match, workers)
		var wg sync.WaitGroup
		for worker := 0; worker < workers; worker++ {
			start := worker * len(symbols) / workers
			end := (worker + 1) * len(symbols) / workers
			wg.Add(1)
			go func(slot, start, end int) {
				defer wg.Done()
				parts[slot] = filterRange(symbols, start, end, qRaw, qLower, caseSensitive)
			}(worker, start, end)
		}
		wg.Wait()
		out = flattenParts(parts)
	}

	sort.Slice(out, func(i, j int) bool {
		return lessMatch(symbols, out[i], out[j])
	})
	return out
}

func filterWorkerCount(n int) int {
	if n < filterParallelThreshold {
		return 1
	}
	workers := runtime.GOMAXPROCS(0)
	maxUseful := n / filterMinChunkSize
	if workers > maxUseful {
		workers = maxUseful
	}
	if workers < 2 {
		return 1
	}
	return workers
}

func filterRange(symbols []Symbol, start, end int, qRaw, qLower []rune, caseSensitive bool) []Match {
	out := make([]Match, 0, max(1, (end-start)/4))
	for i := start; i < end; i++ {
		if m, ok := scoreSymbol(&symbols[i], int32(i), qRaw, qLower, caseSensitive); ok {
			out = append(out, m)
		}
	}
	return out
}

func flattenParts(parts [][]Match) []Match {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	out := make([]Match, 0, total)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func lessMatch(symbols []Symbol, left, right Match) bool {
	if left.Score != right.Score {
		return left.Score > right.Score
	}
	l, r := &symbols[left.Index], &symbols[right.Index]
	if l.Name != r.Name {
		return l.Name < r.Name
	}
	if l.File != r.File {
		return l.File < r.File
	}
	return l.Line < r.Line
}

// The name dominates, then the declaration line, then the file path.
func scoreSymbol(sym *Symbol, index int32, qRaw, qLower []rune, caseSensitive bool) (Match, bool) {
	nameScore, nameOK := fuzzyScore(sym.Name, qRaw, qLower, caseSensitive)
	textScore, textOK := fuzzyScore(sym.Text, qRaw, qLower, caseSensitive)
	pathScore, pathOK := fuzzyScore(sym.File, qRaw, qLower, caseSensitive)
	if !nameOK && !textOK && !pathOK {
		return Match{}, false
	}

	score := int32(-1 << 20)
	if nameOK {
		score = max(score, int32(3000+nameScore*3))
	}
	if textOK {
		score = max(score, int32(1800+textScore*2-60))
	}
	if pathOK {
		score = max(score, int32(1200+pathScore-120))
	}
	if nameOK && textOK {
		score += 80
	}
	return Match{Index: index, Score: score}, true
}

func fuzzyScore(text string, queryRaw, queryLower []rune, caseSensitive bool) (int, bool) {
	if len(queryLower) == 0 {
		return 0, true
	}

	qi := 0
	last := -2
	score := 0
	runeIdx := 0
	var prev rune
	hasPrev := false
	caseMatches := 0

	for _, raw := range text {
		r := lowerRuneFast(raw)

		if qi < len(queryLower) && r == queryLower[qi] {
			bonus := 10
			if runeIdx == 0 || (hasPrev && isBoundaryRune(prev)) {
				bonus += 8
			}
			if last+1 == runeIdx {
				bonus += 6
			}
			if caseSensitive && raw == queryRaw[qi] {
				bonus += 4
				caseMatches++
			}
			score += bonus
			last = runeIdx
			qi++
		}

		prev = r
		hasPrev = true
		runeIdx++
	}

	if qi != len(queryLower) {
		return 0, false
	}
	if runeIdx > len(queryLower) {
		score -= runeIdx - len(queryLower)
	}
	if runeIdx < 40 {
		score += 40 - runeIdx
	}
	score += caseMatches * 3
	return score, true
}

// Positions returns the rune offsets in text matched by query, or nil when
// query does not match.
func Positions(text, query string) []int {
	queryLower := LowerRunes(TrimRunes(query))
	if len(queryLower) == 0 {
		return nil
	}

	out := make([]int, 0, len(queryLower))
	qi := 0
	idx := 0
	for _, raw := range text {
		if qi >= len(queryLower) {
			break
		}
		if lowerRuneFast(raw) == queryLower[qi] {
			out = append(out, idx)
			qi++
		}
		idx++
	}
	if qi != len(queryLower) {
		return nil
	}
	return out
}

func TrimRunes(s string) []rune {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return []rune(s)
}

func LowerRunes(r []rune) []rune {
	if len(r) == 0 {
		return nil
	}
	out := make([]rune, len(r))
	for i := range r {
		out[i] = lowerRuneFast(r[i])
	}
	return out
}

func lowerRuneFast(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	if r <= unicode.MaxASCII {
		return r
	}
	return unicode.ToLower(r)
}

func isBoundaryRune(r rune) bool {
	switch r {
	case '_', '-', '/', '.', ':':
		return true
	}
	if r <= unicode.MaxASCII {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
