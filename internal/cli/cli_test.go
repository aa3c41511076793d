package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

var candidates = []string{"hell", "hello", "help"}

func TestPrompterChoose(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"number", "2\n", "hello"},
		{"keep with zero", "0\n", ""},
		{"keep with empty line", "\n", ""},
		{"custom word", "helot\n", "helot"},
		{"retry after out of range", "9\n3\n", "help"},
		{"give up after retries", "9\n9\n9\n1\n", ""},
		{"eof", "", ""},
		{"last line without newline", "1", "hell"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tc.input), &out, 0)
			got, err := p.Choose("helo", candidates)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "helo")
		})
	}
}

func TestPrompterLimit(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("3\n1\n"), &out, 2)
	got, err := p.Choose("helo", candidates)
	require.NoError(t, err)
	assert.Equal(t, "hell", got)
	assert.NotContains(t, out.String(), "help")
}

func TestPrompterAsChooser(t *testing.T) {
	words := []string{"hell", "hello", "help", "world"}
	tree, err := bktree.Build(words, 5, 255)
	require.NoError(t, err)
	filter, err := bloom.FromWords(words, bloom.DefaultFPProb)
	require.NoError(t, err)
	checker := spellcheck.NewChecker(tree, filter, 1)

	var out bytes.Buffer
	var chooser spellcheck.Chooser = NewPrompter(strings.NewReader("2\n1\n"), &out, 0)
	got, err := checker.Correct("Helo wrold", chooser)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}

func TestInputHandler(t *testing.T) {
	words := []string{"the", "quick", "brown", "fox"}
	tree, err := bktree.Build(words, 5, 255)
	require.NoError(t, err)
	filter, err := bloom.FromWords(words, bloom.DefaultFPProb)
	require.NoError(t, err)

	var out bytes.Buffer
	h := NewInputHandler(spellcheck.NewChecker(tree, filter, 1), strings.NewReader("the quikc fox\n\nthe fox"), &out, 0)
	require.NoError(t, h.Start())

	assert.Contains(t, out.String(), "quikc -> quick")
	assert.Contains(t, out.String(), "no spelling errors")
	assert.Equal(t, 2, h.requestCount)
}

func TestFormatResult(t *testing.T) {
	res := spellcheck.Result{Token: "helo", Candidates: candidates}
	assert.Equal(t, "helo -> hell, hello", FormatResult(res, 2))
	assert.Contains(t, FormatResult(spellcheck.Result{Token: "zzz"}, 0), "no candidates")
}
