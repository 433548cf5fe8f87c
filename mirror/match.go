package mirror

import (
	"sort"
	"strings"
	"unicode"
)

// normalizeName maps a region name to its lookup key: lower case,
// punctuation stripped, whitespace collapsed to single spaces.
func normalizeName(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// closestNames ranks candidates by edit distance to name. It returns
// an unambiguous best match (distance small relative to the name
// length) or, failing that, up to three suggestions.
func closestNames(name string, candidates []string) (best string, suggestions []string) {
	type scored struct {
		name string
		dist int
	}
	var ranked []scored
	for _, c := range candidates {
		d := editDistance(name, normalizeName(c))
		ranked = append(ranked, scored{c, d})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) == 0 {
		return "", nil
	}

	// accept a unique close match ("Britain" -> "Great Britain" is
	// handled by the substring rule, typos by the distance rule)
	if d := ranked[0].dist; d <= len(name)/3 {
		if len(ranked) == 1 || ranked[1].dist > d {
			return ranked[0].name, nil
		}
	}
	for _, c := range candidates {
		nc := normalizeName(c)
		if strings.Contains(nc, name) && len(name) >= 4 {
			if best != "" {
				best = "" // ambiguous
				break
			}
			best = c
		}
	}
	if best != "" {
		return best, nil
	}

	for i := 0; i < len(ranked) && i < 3; i++ {
		suggestions = append(suggestions, ranked[i].name)
	}
	return "", suggestions
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
