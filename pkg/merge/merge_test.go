package merge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-dataset/models"
)

func writeLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

func readObjects(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj))
		out = append(out, obj)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestMerge_FingerprintDedup(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, dir, "a.jsonl",
		`{"text":"Hello, World!","source_url":"https://a"}`,
		`{"text":"Unique one"}`,
	)
	b := writeLines(t, dir, "b.jsonl",
		`{"text":"hello world","source_url":"https://b"}`,
		``,
		`{"text":"Unique two"}`,
	)
	out := filepath.Join(dir, "combined.jsonl")

	stats, err := Merge([]string{a, b}, out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{
		WrittenRecords:    3,
		SkippedDuplicates: 1,
		SkippedInvalid:    0,
		InputFiles:        2,
		InputLines:        4,
		DedupStrategy:     models.DedupFingerprint,
	}, stats)

	objs := readObjects(t, out)
	require.Len(t, objs, 3)
	assert.Equal(t, "Hello, World!", objs[0]["text"])
	assert.Equal(t, "https://a", objs[0]["source_url"])
	assert.Equal(t, "Unique one", objs[1]["text"])
	assert.Equal(t, "Unique two", objs[2]["text"])
}

func TestMerge_InvalidLines(t *testing.T) {
	var out bytes.Buffer
	input := strings.Join([]string{
		`not json`,
		`[1,2,3]`,
		`"just a string"`,
		`null`,
		`{"source_url":"https://x"}`,
		`{"text":42}`,
		`{"text":"   "}`,
		`{"text":"valid record"}`,
	}, "\n")

	stats, err := MergeReaders([]Input{{Name: "mixed.jsonl", Reader: strings.NewReader(input)}}, &out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WrittenRecords)
	assert.Equal(t, 7, stats.SkippedInvalid)
	assert.Equal(t, 8, stats.InputLines)
	assert.Equal(t, `{"text":"valid record"}`+"\n", out.String())
}

func TestMerge_AccountingIdentity(t *testing.T) {
	one := "{\"text\":\"a\"}\n{\"text\":\"A\"}\nbad\n\n{\"text\":\"b\"}\n"
	two := "{\"text\":\"b\"}\n{\"text\":\"c\"}\n{}\n"

	tests := []struct {
		name string
		opts Options
	}{
		{"fingerprint", DefaultOptions()},
		{"normalized text", Options{Deduplicate: true, UseFingerprint: false}},
		{"no dedup", Options{Deduplicate: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			inputs := []Input{
				{Name: "one", Reader: strings.NewReader(one)},
				{Name: "two", Reader: strings.NewReader(two)},
			}
			stats, err := MergeReaders(inputs, &out, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, stats.InputLines, stats.WrittenRecords+stats.SkippedDuplicates+stats.SkippedInvalid)
			assert.Equal(t, 7, stats.InputLines)
			assert.Equal(t, 2, stats.SkippedInvalid)
			assert.Equal(t, stats.WrittenRecords, strings.Count(out.String(), "\n"))
		})
	}
}

func TestMerge_NoDedup(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("{\"text\":\"same\"}\n{\"text\":\"same\"}\n")
	stats, err := MergeReaders([]Input{{Name: "x", Reader: in}}, &out, Options{Deduplicate: false, UseFingerprint: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.WrittenRecords)
	assert.Equal(t, 0, stats.SkippedDuplicates)
}

func TestMerge_ExactNormalizedText(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("{\"text\":\"Hello  World\"}\n{\"text\":\"hello world!\"}\n{\"text\":\"hello planet\"}\n")
	stats, err := MergeReaders([]Input{{Name: "x", Reader: in}}, &out, Options{Deduplicate: true, UseFingerprint: false})
	require.NoError(t, err)
	assert.Equal(t, models.DedupNormalizedText, stats.DedupStrategy)
	assert.Equal(t, 2, stats.WrittenRecords)
	assert.Equal(t, 1, stats.SkippedDuplicates)
}

func TestMerge_SourceTag(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(strings.Join([]string{
		`{ "text": "first", "source_url": "https://a" }`,
		`{"text":"second","dataset_source":"old"}`,
	}, "\n"))

	_, err := MergeReaders([]Input{{Name: "news.jsonl", Reader: in}}, &out, Options{AddSourceTag: true})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"text":"first","source_url":"https://a","dataset_source":"news.jsonl"}`, lines[0])

	var second map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "news.jsonl", second["dataset_source"])
	assert.Equal(t, "second", second["text"])
}

func TestMerge_SourceTagUsesFileName(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, dir, "docs.jsonl", `{"text":"alpha"}`)
	out := filepath.Join(dir, "out.jsonl")

	_, err := Merge([]string{a}, out, Options{AddSourceTag: true})
	require.NoError(t, err)
	objs := readObjects(t, out)
	require.Len(t, objs, 1)
	assert.Equal(t, "docs.jsonl", objs[0][SourceField])
}

func TestMerge_MissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, dir, "a.jsonl", `{"text":"alpha"}`)
	out := filepath.Join(dir, "out.jsonl")

	_, err := Merge([]string{a, filepath.Join(dir, "missing.jsonl")}, out, DefaultOptions())
	require.Error(t, err)

	var missing *FileMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, filepath.Join(dir, "missing.jsonl"), missing.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "output must not be created")
}

func TestMerge_SeenSetIsPerCall(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, dir, "a.jsonl", `{"text":"repeat me"}`)

	for i := 0; i < 2; i++ {
		stats, err := Merge([]string{a}, filepath.Join(dir, "out.jsonl"), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.WrittenRecords)
	}
}

func TestMerge_LongLine(t *testing.T) {
	long := strings.Repeat("word ", 200_000)
	var out bytes.Buffer
	in := strings.NewReader(`{"text":"` + long + `"}` + "\n")
	stats, err := MergeReaders([]Input{{Name: "big", Reader: in}}, &out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WrittenRecords)
}

func TestMerge_OversizedLineSkipped(t *testing.T) {
	oversized := `{"text":"` + strings.Repeat("a", maxLineBytes+1024) + `"}`

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "between valid lines",
			input: `{"text":"first record"}` + "\n" + oversized + "\n" + `{"text":"third record"}` + "\n",
		},
		{
			name:  "last line without newline",
			input: `{"text":"first record"}` + "\n" + `{"text":"third record"}` + "\n" + oversized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stats, err := MergeReaders([]Input{{Name: "x", Reader: strings.NewReader(tt.input)}}, &out, DefaultOptions())
			require.NoError(t, err)

			assert.Equal(t, 3, stats.InputLines)
			assert.Equal(t, 2, stats.WrittenRecords)
			assert.Equal(t, 1, stats.SkippedInvalid)
			assert.Equal(t, `{"text":"first record"}`+"\n"+`{"text":"third record"}`+"\n", out.String())
		})
	}
}

type failingReader struct {
	data []byte
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("disk on fire")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestMerge_ReadErrorFlushesWrittenLines(t *testing.T) {
	var out bytes.Buffer
	in := &failingReader{data: []byte(`{"text":"first record"}` + "\n")}

	stats, err := MergeReaders([]Input{{Name: "x", Reader: in}}, &out, DefaultOptions())
	require.ErrorContains(t, err, "failed to read x")

	assert.Equal(t, 1, stats.WrittenRecords)
	assert.Equal(t, `{"text":"first record"}`+"\n", out.String())
}
