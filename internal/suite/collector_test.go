package suite

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

func TestCollector_FinalizeOnce(t *testing.T) {
	c := NewCollector()
	c.Add(&domain.RequestResult{Name: "a", Status: domain.StatusPass})
	c.Add(&domain.PerformanceResult{Name: "b", Status: domain.StatusFail})

	calls := 0
	var flushed []domain.Result
	flush := func(results []domain.Result) error {
		calls++
		flushed = results
		return nil
	}

	require.NoError(t, c.Finalize(flush))
	assert.Equal(t, 1, calls)
	require.Len(t, flushed, 2)
	assert.Equal(t, "a", flushed[0].ResultName())
	assert.Equal(t, "b", flushed[1].ResultName())

	err := c.Finalize(flush)
	assert.True(t, errors.Is(err, ErrAlreadyFinalized))
	assert.Equal(t, 1, calls)
}

func TestCollector_EmptySkipsFlush(t *testing.T) {
	c := NewCollector()

	err := c.Finalize(func([]domain.Result) error {
		t.Fatal("flush must not run without results")
		return nil
	})
	assert.True(t, errors.Is(err, ErrNoResults))
	assert.True(t, errors.Is(c.Finalize(nil), ErrAlreadyFinalized))
}

func TestCollector_PropagatesFlushError(t *testing.T) {
	c := NewCollector()
	c.Add(&domain.RequestResult{Name: "a"})

	want := errors.New("disk full")
	assert.Equal(t, want, c.Finalize(func([]domain.Result) error { return want }))
}

func TestCollector_ResultsIsACopy(t *testing.T) {
	c := NewCollector()
	c.Add(&domain.RequestResult{Name: "a"})

	results := c.Results()
	results[0] = &domain.RequestResult{Name: "changed"}

	assert.Equal(t, "a", c.Results()[0].ResultName())
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(&domain.RequestResult{Name: "x"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
}
