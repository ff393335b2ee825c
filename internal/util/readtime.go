package util

import (
	"fmt"
	"strings"
)

// readingWordsPerMinute is the assumed pace for the read-time estimate.
const readingWordsPerMinute = 200

// EstimateReadTime returns a display string like "4 min read" for a
// markdown body. The estimate counts whitespace-separated words and
// never drops below one minute.
func EstimateReadTime(body string) string {
	words := len(strings.Fields(body))
	minutes := (words + readingWordsPerMinute - 1) / readingWordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
