package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, InvalidInput("bad week").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("missing").StatusCode())
	assert.Equal(t, http.StatusServiceUnavailable, Unavailable(errors.New("refused"), "backend down").StatusCode())
	assert.Equal(t, http.StatusBadGateway, (&PipelineError{Stage: "retrieval", Err: errors.New("x")}).StatusCode())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsInvalidInput(InvalidInput("x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsUnavailable(Unavailable(nil, "x")))
	assert.False(t, IsNotFound(InvalidInput("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to fetch week: %w", NotFound("week 5"))
	assert.True(t, IsNotFound(wrapped))
}

func TestPipelineWrapsUnclassifiedErrors(t *testing.T) {
	err := Pipeline("week_context", errors.New("connection reset"))

	pe, ok := AsPipeline(err)
	require.True(t, ok)
	assert.Equal(t, "week_context", pe.Stage)
	assert.Contains(t, err.Error(), "week_context")
}

func TestPipelineWrapsUnavailable(t *testing.T) {
	err := Pipeline("week_context", Unavailable(errors.New("refused"), "store down"))

	_, ok := AsPipeline(err)
	assert.True(t, ok)
}

func TestPipelinePassesThroughClassifiedErrors(t *testing.T) {
	notFound := NotFound("week 5 has not been indexed")
	assert.Equal(t, error(notFound), Pipeline("week_context", notFound))

	invalid := InvalidInput("week out of range")
	assert.Equal(t, error(invalid), Pipeline("week_context", invalid))
	_, ok := AsPipeline(Pipeline("week_context", invalid))
	assert.False(t, ok)
}

func TestErrorMessageCarriesCause(t *testing.T) {
	err := Unavailable(errors.New("dial tcp: connection refused"), "patient backend unreachable")
	assert.Contains(t, err.Error(), "patient backend unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}
