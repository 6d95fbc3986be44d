package crossref

import (
	"regexp"
	"strconv"
)

// taskRefPattern matches task references written as #123. A reference
// must not be glued to a preceding word character (so "abc#1" is not one).
var taskRefPattern = regexp.MustCompile(`(?:^|[^\w&])#(\d{1,18})\b`)

// ExtractTaskRefs extracts task ids referenced in text. Returns a
// deduplicated list preserving the order of first occurrence.
func ExtractTaskRefs(text string) []int64 {
	matches := taskRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int64]bool)
	var result []int64
	for _, m := range matches {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// MatchCrossRefs extracts the task references from a task's description
// and its comments, leaving out the task itself. If known is non-empty,
// only ids in that set are returned.
func MatchCrossRefs(
	selfID int64,
	description string,
	comments []string,
	known map[int64]bool,
) []int64 {
	seen := map[int64]bool{selfID: true}
	var refs []int64
	for _, text := range append([]string{description}, comments...) {
		for _, id := range ExtractTaskRefs(text) {
			if seen[id] {
				continue
			}
			seen[id] = true
			if len(known) > 0 && !known[id] {
				continue
			}
			refs = append(refs, id)
		}
	}
	return refs
}
