package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a, b,, c"))
	assert.Equal(t, []string{}, SplitList(" , ,"))
	assert.Equal(t, []string{}, SplitList(""))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"first", "second"}, SplitLines("  first\r\n\n second \n"))
}

func TestAbsolutize(t *testing.T) {
	assert.Equal(t, "https://x.io/uploads/a.png", Absolutize("https://x.io/", "/uploads/a.png"))
	assert.Equal(t, "https://cdn/a.png", Absolutize("https://x.io", "https://cdn/a.png"))
	assert.Equal(t, "//cdn/a.png", Absolutize("https://x.io", "//cdn/a.png"))
	assert.Equal(t, "/a.png", Absolutize("", "/a.png"))
}
