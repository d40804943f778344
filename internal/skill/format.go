package skill

import (
	"fmt"
	"strings"

	"github.com/tonimelisma/onedrive-skill/internal/graph"
)

// maxSearchLines caps how many matches Search prints.
const maxSearchLines = 10

const unknownName = "Unknown"

func displayName(item *graph.Item) string {
	if item.Name == "" {
		return unknownName
	}

	return item.Name
}

func formatListing(items []graph.Item) string {
	if len(items) == 0 {
		return "No items found in the specified folder."
	}

	lines := make([]string, 0, len(items))
	for i := range items {
		lines = append(lines, fmt.Sprintf("- [%s] %s (%d bytes)", items[i].Kind(), displayName(&items[i]), items[i].Size))
	}

	return strings.Join(lines, "\n")
}

func formatSearch(query string, items []graph.Item) string {
	if len(items) == 0 {
		return fmt.Sprintf("No items found matching '%s'.", query)
	}

	shown := min(len(items), maxSearchLines)

	lines := make([]string, 0, shown+2)
	lines = append(lines, fmt.Sprintf("Found %d item(s):", len(items)))

	for i := range shown {
		lines = append(lines, fmt.Sprintf("- [%s] %s (ID: %s)", items[i].Kind(), displayName(&items[i]), items[i].ID))
	}

	if rest := len(items) - shown; rest > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more items", rest))
	}

	return strings.Join(lines, "\n")
}
