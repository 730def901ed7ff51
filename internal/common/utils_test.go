package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "https://example.com/a", "https://example.com/a"},
		{"whitespace", "  https://example.com \n", "https://example.com"},
		{"trailing punctuation", "https://example.com/page,", "https://example.com/page"},
		{"wrapped", "(https://example.com)", "https://example.com"},
		{"angle brackets", "<https://example.com>", "https://example.com"},
		{"markdown link", "[docs](https://docs.python.org/3/)", "https://docs.python.org/3/"},
		{"quoted", `"https://example.com"`, "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeURL(tt.in))
		})
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	in := []string{
		"https://en.wikipedia.org/wiki/Go",
		"http://localhost:8080/page",
		" https://www.reddit.com/r/golang, ",
		"ftp://example.com/file",
		"not a url",
		"https://exa mple.com",
		"",
	}

	valid, invalid := SanitizeAndValidateURLs(in)
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Go",
		"http://localhost:8080/page",
		"https://www.reddit.com/r/golang",
	}, valid)
	assert.Equal(t, []string{"ftp://example.com/file", "not a url", "https://exa mple.com", ""}, invalid)
}

func TestSplitURLList(t *testing.T) {
	got := SplitURLList("https://a.example, https://b.example\nhttps://c.example\r\n,,")
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, got)
	assert.Empty(t, SplitURLList(" , "))
}
