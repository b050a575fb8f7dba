package syntax

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInteropHandlesValid(t *testing.T) {
	assert := assert.New(t)
	file, err := os.Open("testdata/handle_valid.txt")
	assert.NoError(err)
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		_, err := ParseHandle(line)
		if err != nil {
			fmt.Println("GOOD: " + line)
		}
		assert.NoError(err)
	}
	assert.NoError(scanner.Err())
}

func TestInteropHandlesInvalid(t *testing.T) {
	assert := assert.New(t)
	file, err := os.Open("testdata/handle_invalid.txt")
	assert.NoError(err)
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		_, err := ParseHandle(line)
		if err == nil {
			fmt.Println("BAD: " + line)
		}
		assert.Error(err)
		assert.True(errors.Is(err, ErrInvalidHandle))
	}
	assert.NoError(scanner.Err())
}

func TestHandleInvalidInputs(t *testing.T) {
	assert := assert.New(t)

	for _, raw := range []string{
		"",
		"   ",
		"\t\n",
		"bad\x00handle",
		"bell\x07",
		"del\x7f",
		string([]byte{0xff, 0xfe, 'a'}),
		strings.Repeat("a", MaxHandleLength+1),
	} {
		_, err := ParseHandle(raw)
		assert.ErrorIs(err, ErrInvalidHandle, "raw=%q", raw)
	}

	_, err := ParseHandle(strings.Repeat("a", MaxHandleLength))
	assert.NoError(err)
}

func TestHandleTrim(t *testing.T) {
	assert := assert.New(t)

	h, err := ParseHandle("  octocat \n")
	assert.NoError(err)
	assert.Equal(Handle("octocat"), h)

	assert.True(IsBlank(""))
	assert.True(IsBlank(" \t "))
	assert.False(IsBlank(" x "))
}

func TestHandleNormalize(t *testing.T) {
	assert := assert.New(t)

	h, err := ParseHandle("OctoCat")
	assert.NoError(err)
	assert.Equal("octocat", string(h.Normalize()))
	assert.True(h.Equal(Handle("octocat")))
	assert.False(h.Equal(Handle("octocat2")))
}

func TestHandlePathSegment(t *testing.T) {
	assert := assert.New(t)

	testVec := [][]string{
		{"octocat", "octocat"},
		{"ghost-user-404", "ghost-user-404"},
		{"with space", "with%20space"},
		{"what?", "what%3F"},
		{"hash#tag", "hash%23tag"},
		{"slash/inside", "slash%2Finside"},
		{"percent%20", "percent%2520"},
		{"ü", "%C3%BC"},
	}
	for _, pair := range testVec {
		h, err := ParseHandle(pair[0])
		assert.NoError(err)
		assert.Equal(pair[1], h.PathSegment())
	}
}

func TestHandleText(t *testing.T) {
	assert := assert.New(t)

	var h Handle
	assert.NoError(h.UnmarshalText([]byte(" octocat ")))
	assert.Equal(Handle("octocat"), h)
	b, err := h.MarshalText()
	assert.NoError(err)
	assert.Equal("octocat", string(b))

	assert.Error(h.UnmarshalText([]byte("..")))
}
