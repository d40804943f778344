package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid keys in the config file.
var knownKeys = map[string]bool{
	"base_url":   true,
	"client_id":  true,
	"env_file":   true,
	"log_level":  true,
	"user_agent": true,
}

// knownKeysList is the sorted form of knownKeys. Sorted for deterministic
// suggestions when two candidates have the same edit distance.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns an
// error with "did you mean?" suggestions for each one.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	seen := make(map[string]bool)

	for _, key := range md.Undecoded() {
		// Tables and their children are all unknown; report the top key only once.
		name := key[0]
		if seen[name] {
			continue
		}

		seen[name] = true

		if suggestion := closestMatch(name, knownKeysList); suggestion != "" {
			errs = append(errs, fmt.Errorf("unknown config key %q, did you mean %q?", name, suggestion))
			continue
		}

		errs = append(errs, fmt.Errorf("unknown config key %q", name))
	}

	return errors.Join(errs...)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		if d := levenshtein(unknown, k); d < bestDist {
			bestDist = d
			best = k
		}
	}

	return best
}

// levenshtein computes the edit distance between two strings using a
// single-row buffer.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
