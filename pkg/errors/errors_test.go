package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	err := NewNetwork("https://example.com/a", "unexpected status 503", nil)
	assert.Equal(t, "[network] https://example.com/a: unexpected status 503", err.Error())

	cause := stderrors.New("boom")
	err = NewIO("out.epub", "failed to write epub", cause)
	assert.Equal(t, "[io] out.epub: failed to write epub: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	err = NewConfiguration("invalid cache backend", nil)
	assert.Equal(t, "[configuration] invalid cache backend", err.Error())
}

func TestIsTypeThroughWrapping(t *testing.T) {
	base := NewParsing("https://example.com/series/1/x/", "missing title", nil)
	wrapped := fmt.Errorf("failed to get work: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeParsing))
	assert.False(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(nil, ErrorTypeParsing))
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{NewNetwork("", "x", nil), 2},
		{NewParsing("", "x", nil), 3},
		{fmt.Errorf("wrap: %w", NewAssembly("", "x")), 4},
		{NewIO("", "x", nil), 5},
		{NewCache("", "x", nil), 6},
		{NewConfiguration("x", nil), 6},
		{stderrors.New("other"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
