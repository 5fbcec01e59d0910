package crawl

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyRange selects the 1-based inclusive "start-end" slice of urls. Either
// side may be omitted: an empty start defaults to 1, an empty end to the list
// length. It returns the selection plus human-readable warnings for every
// input that had to be reinterpreted; range filtering never silently loses
// all input without signaling why.
//
// Edge cases: a start beyond the list yields an empty result, a start greater
// than end degrades to "from start to end of list", and a malformed or
// negative bound is ignored (the whole list is processed).
func ApplyRange(urls []string, spec string) ([]string, []string) {
	if spec == "" {
		return urls, nil
	}

	var warnings []string

	start, end, ok := parseRange(spec, len(urls))
	if !ok {
		warnings = append(warnings, fmt.Sprintf("invalid range %q, processing the whole list", spec))
		return urls, warnings
	}

	if start > len(urls) {
		warnings = append(warnings, fmt.Sprintf("range %q starts beyond the %d-entry list, nothing selected", spec, len(urls)))
		return []string{}, warnings
	}

	if start > end {
		warnings = append(warnings, fmt.Sprintf("range %q has start after end, processing from %d to end of list", spec, start))
		end = len(urls)
	}

	if end > len(urls) {
		end = len(urls)
	}

	return urls[start-1 : end], warnings
}

// parseRange parses "start-end" with either side omittable. Returns ok=false
// for malformed or negative bounds. A start below 1 is clamped to 1.
func parseRange(spec string, listLen int) (start, end int, ok bool) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	start, end = 1, listLen

	if s := strings.TrimSpace(parts[0]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		start = n
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		end = n
	}

	// "0-N" is treated as starting from the beginning.
	if start < 1 {
		start = 1
	}
	return start, end, true
}

// Chunk splits urls into sub-batches of at most size entries. The
// orchestrator processes chunks strictly sequentially, bounding peak open
// browser contexts and memory for very large ranges. A size <= 0 disables
// chunking: everything goes into a single chunk.
func Chunk(urls []string, size int) [][]string {
	if len(urls) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]string{urls}
	}

	chunks := make([][]string, 0, (len(urls)+size-1)/size)
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		chunks = append(chunks, urls[start:end])
	}
	return chunks
}
