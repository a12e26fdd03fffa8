package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/docfed/docfed/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("a1b2c3d4e5f60718"))

	f.Add("a1b2c3d4e5f60718")

	assert.True(t, f.Test("a1b2c3d4e5f60718"))
	assert.False(t, f.Test("00000000deadbeef"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	for i := 0; i < 100; i++ {
		f.Add(fmt.Sprintf("%016x", i))
	}

	count := f.EstimatedCount()
	assert.InDelta(t, 100, count, 10)
}

func TestFilter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(10000, 0.01)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				fp := fmt.Sprintf("%02d-%016x", w, i)
				f.Add(fp)
				f.Test(fp)
			}
		}(w)
	}
	wg.Wait()

	assert.True(t, f.Test("00-0000000000000000"))
}
