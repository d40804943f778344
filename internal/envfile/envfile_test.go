package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessKey  = "ONEDRIVE_ACCESS_TOKEN"
	refreshKey = "ONEDRIVE_REFRESH_TOKEN"
)

var tokenKeys = []string{accessKey, refreshKey}

func TestLoad_FileNotFound(t *testing.T) {
	values, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoad_ParsesPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"# comment",
		"",
		"PLAIN=value",
		`QUOTED="with spaces"`,
		"SINGLE='single'",
		"export EXPORTED=yes",
		"  PADDED = trimmed  ",
		"not a pair",
		"EMPTY=",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), FilePerms))

	values, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"PLAIN":    "value",
		"QUOTED":   "with spaces",
		"SINGLE":   "single",
		"EXPORTED": "yes",
		"PADDED":   "trimmed",
		"EMPTY":    "",
	}, values)
}

func TestLoad_LongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	cert := strings.Repeat("A", 70000)
	require.NoError(t, os.WriteFile(path, []byte("CERT="+cert+"\n"+accessKey+"=tok\n"), FilePerms))

	values, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok", values[accessKey])
	assert.Len(t, values["CERT"], 70000)
}

func TestLoad_StripsOneMatchingQuotePair(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"inner quote kept", `K="it's'"`, "it's'"},
		{"mismatched pair kept", `K='"`, `'"`},
		{"lone quote kept", `K="`, `"`},
		{"nested pair", `K="'x'"`, "'x'"},
		{"crlf", "K='v'\r", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(tt.line+"\n"), FilePerms))

			values, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values["K"])
		})
	}
}

func TestUpsert_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	err := Upsert(path, tokenKeys, map[string]string{accessKey: "a1", refreshKey: "r1"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ONEDRIVE_ACCESS_TOKEN=a1\nONEDRIVE_REFRESH_TOKEN=r1\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestUpsert_TwiceKeepsOneLinePerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	original := "# my settings\nOTHER=keep me\nONEDRIVE_ACCESS_TOKEN=stale\nLAST=too\n"
	require.NoError(t, os.WriteFile(path, []byte(original), FilePerms))

	require.NoError(t, Upsert(path, tokenKeys, map[string]string{accessKey: "first", refreshKey: "r-first"}))
	require.NoError(t, Upsert(path, tokenKeys, map[string]string{accessKey: "second", refreshKey: "r-second"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"# my settings",
		"OTHER=keep me",
		"LAST=too",
		"ONEDRIVE_ACCESS_TOKEN=second",
		"ONEDRIVE_REFRESH_TOKEN=r-second",
	}, lines)
}

func TestUpsert_MissingValueSkipsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ONEDRIVE_REFRESH_TOKEN=old\n"), FilePerms))

	// No refresh token issued: the old line is still removed, nothing new written.
	require.NoError(t, Upsert(path, tokenKeys, map[string]string{accessKey: "only-access"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ONEDRIVE_ACCESS_TOKEN=only-access\n", string(data))
}

func TestUpsert_NoTrailingNewlinePreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("A=1\nB=2"), FilePerms))

	require.NoError(t, Upsert(path, tokenKeys, map[string]string{accessKey: "x"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=2\nONEDRIVE_ACCESS_TOKEN=x\n", string(data))
}

func TestUpsert_SimilarPrefixUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ONEDRIVE_ACCESS_TOKEN_OLD=keep\n"), FilePerms))

	require.NoError(t, Upsert(path, tokenKeys, map[string]string{accessKey: "new"}))

	values, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", values["ONEDRIVE_ACCESS_TOKEN_OLD"])
	assert.Equal(t, "new", values[accessKey])
}

func TestUpsert_DirectoryMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", ".env")

	err := Upsert(path, tokenKeys, map[string]string{accessKey: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating temp file")
}
