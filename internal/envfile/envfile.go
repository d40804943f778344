// Package envfile reads and rewrites KEY=VALUE settings files (".env" files).
// The auth helper stores freshly issued tokens here and the config layer
// reads them back at startup. Unrelated lines are always preserved verbatim.
package envfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilePerms restricts settings files to owner-only read/write because they
// carry bearer tokens.
const FilePerms = 0o600

// Load reads KEY=VALUE pairs from the file at path. Blank lines and lines
// starting with "#" are skipped; surrounding quotes on values are trimmed.
// A missing file yields an empty map and no error.
func Load(path string) (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}

	if err != nil {
		return nil, fmt.Errorf("envfile: reading %s: %w", path, err)
	}

	// Lines have no length limit: certificates and keys often share the file.
	for _, line := range splitLines(string(data)) {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}

		values[key] = value
	}

	return values, nil
}

// parseLine splits a single settings line. Lines without "=" and comment
// lines report ok=false.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
	value = unquote(strings.TrimSpace(value))

	return key, value, key != ""
}

// unquote strips one matching pair of surrounding single or double quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}

	return v
}

// Upsert sets each key in values, in the order given by keys. Every existing
// line that starts with "KEY=" for one of those keys is dropped; all other
// lines stay untouched and in order; the new assignments are appended at the
// end. Keys absent from values are ignored. The file is rewritten atomically
// with FilePerms.
func Upsert(path string, keys []string, values map[string]string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("envfile: reading %s: %w", path, err)
	}

	var buf bytes.Buffer

	for _, line := range splitLines(string(existing)) {
		if hasAnyKeyPrefix(line, keys) {
			continue
		}

		buf.WriteString(line)
	}

	// A preserved last line without a trailing newline would otherwise be
	// glued to the first new assignment.
	if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}

	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			continue
		}

		fmt.Fprintf(&buf, "%s=%s\n", key, value)
	}

	return atomicWrite(path, buf.Bytes())
}

// splitLines splits s after every newline, keeping the terminators so that
// preserved lines are written back byte-for-byte.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func hasAnyKeyPrefix(line string, keys []string) bool {
	for _, key := range keys {
		if strings.HasPrefix(line, key+"=") {
			return true
		}
	}

	return false
}

// atomicWrite writes data to a temp file in the same directory, syncs it,
// and renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".env-*.tmp")
	if err != nil {
		return fmt.Errorf("envfile: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("envfile: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("envfile: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("envfile: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("envfile: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("envfile: renaming: %w", err)
	}

	success = true

	return nil
}
