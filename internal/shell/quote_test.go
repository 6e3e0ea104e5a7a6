package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	cases := map[string]string{
		"":            "''",
		"Ant-pluto":   "Ant-pluto",
		"/a/b_c.root": "/a/b_c.root",
		"ncpus=1,x":   "ncpus=1,x",
		"p pi0 [g g]": "'p pi0 [g g]'",
		"eta'":        `'eta'\'''`,
		"$HOME":       "'$HOME'",
		"e+e-":        "e+e-",
	}
	for in, want := range cases {
		assert.Equal(t, want, Quote(in), in)
	}
}

func TestJoinScript(t *testing.T) {
	assert.Equal(t, "a 'b c' d", Join([]string{"a", "b c", "d"}))
	assert.Equal(t, "a; b", Script("a", "  ", "b "))
	assert.Equal(t, "", Script())
}
