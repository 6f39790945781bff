package exchange

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

func pagesOf(bodies []string, tail error) iter.Seq2[*core.Page, error] {
	return func(yield func(*core.Page, error) bool) {
		for _, b := range bodies {
			if !yield(&core.Page{StatusCode: 200, Body: []byte(b)}, nil) {
				return
			}
		}
		if tail != nil {
			yield(nil, tail)
		}
	}
}

func split(page *core.Page) ([]string, error) {
	return []string{string(page.Body)}, nil
}

func TestCollect(t *testing.T) {
	records, err := Collect(pagesOf([]string{"a", "b", "c"}, nil), split)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, records)
}

func TestCollect_Empty(t *testing.T) {
	records, err := Collect(pagesOf(nil, nil), split)

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCollect_PreservesPartial(t *testing.T) {
	tail := errors.New("page 3 failed")

	records, err := Collect(pagesOf([]string{"a", "b"}, tail), split)

	assert.ErrorIs(t, err, tail)
	assert.Equal(t, []string{"a", "b"}, records)
}

func TestCollect_NormalizeError(t *testing.T) {
	bad := errors.New("bad page")
	calls := 0
	normalize := func(page *core.Page) ([]string, error) {
		calls++
		if string(page.Body) == "b" {
			return nil, bad
		}
		return []string{string(page.Body)}, nil
	}

	records, err := Collect(pagesOf([]string{"a", "b", "c"}, nil), normalize)

	assert.ErrorIs(t, err, bad)
	assert.Equal(t, []string{"a"}, records)
	assert.Equal(t, 2, calls)
}
