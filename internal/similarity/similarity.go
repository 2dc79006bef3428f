// Package similarity provides string edit-distance utilities for fuzzy
// transaction matching.
package similarity

// Levenshtein computes the edit distance between a and b using the classic
// dynamic-programming algorithm with unit cost for insertion, deletion, and
// substitution. Comparison is rune-based so multi-byte characters count as
// single edits. O(len(a)*len(b)) time and space.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	rows := len(ra) + 1
	cols := len(rb) + 1

	dist := make([][]int, rows)
	for i := range dist {
		dist[i] = make([]int, cols)
		dist[i][0] = i
	}
	for j := 0; j < cols; j++ {
		dist[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			deletion := dist[i-1][j] + 1
			insertion := dist[i][j-1] + 1
			substitution := dist[i-1][j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			dist[i][j] = min
		}
	}

	return dist[rows-1][cols-1]
}
