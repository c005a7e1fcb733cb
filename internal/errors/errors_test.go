package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "plain",
			err:  MalformedInput("chunk", "column %q not found", "Time"),
			want: `MALFORMED_INPUT: column "Time" not found`,
		},
		{
			name: "with unit",
			err:  EmptyInput("reduce", "no numeric columns").WithUnit("RAT1/rem/chunk_00"),
			want: "EMPTY_INPUT: no numeric columns [RAT1/rem/chunk_00]",
		},
		{
			name: "with cause",
			err:  Wrap(CodeNormalization, "normalize", stderrors.New("boom"), "read input"),
			want: "NORMALIZATION_FAILED: read input: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCodePredicates(t *testing.T) {
	malformed := MalformedInput("chunk", "missing column")
	wrapped := fmt.Errorf("stage failed: %w", malformed)

	assert.True(t, IsMalformedInput(wrapped))
	assert.False(t, IsEmptyInput(wrapped))
	assert.Equal(t, CodeMalformedInput, CodeOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("open failed")
	err := Wrap(CodeEmptyInput, "reduce", cause, "read window")
	require.ErrorIs(t, err, cause)
}
