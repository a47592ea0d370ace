package aggregator

import (
	"sync"
	"testing"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(AccumulatorTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type AccumulatorTestSuite struct {
}

func (s *AccumulatorTestSuite) TestFloat64SumAccumulator(c *gc.C) {
	numWorkers := 32
	acc := new(Float64SumAccumulator)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				acc.Aggregate(0.5)
			}
		}()
	}
	wg.Wait()

	c.Assert(acc.Get(), gc.Equals, float64(numWorkers)*50.0)
	c.Assert(acc.Delta(), gc.Equals, float64(numWorkers)*50.0)
	c.Assert(acc.Delta(), gc.Equals, 0.0, gc.Commentf("second Delta call without new aggregations must report no change"))

	acc.Set(1.5)
	c.Assert(acc.Get(), gc.Equals, 1.5)
	c.Assert(acc.Delta(), gc.Equals, 0.0)
}

func (s *AccumulatorTestSuite) TestFloat64MaxAccumulator(c *gc.C) {
	numWorkers := 32
	acc := new(Float64MaxAccumulator)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func(i int) {
			defer wg.Done()
			acc.Aggregate(float64(i))
		}(i)
	}
	wg.Wait()

	c.Assert(acc.Get(), gc.Equals, float64(numWorkers-1))

	acc.Aggregate(1.0)
	c.Assert(acc.Get(), gc.Equals, float64(numWorkers-1), gc.Commentf("smaller values must not displace the tracked maximum"))

	acc.Set(0.0)
	acc.Aggregate(0.25)
	c.Assert(acc.Get(), gc.Equals, 0.25)
}

func (s *AccumulatorTestSuite) TestIntAccumulator(c *gc.C) {
	numWorkers := 32
	acc := new(IntAccumulator)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				acc.Aggregate(1)
			}
		}()
	}
	wg.Wait()

	c.Assert(acc.Get(), gc.Equals, numWorkers*100)
	c.Assert(acc.Delta(), gc.Equals, numWorkers*100)
	c.Assert(acc.Delta(), gc.Equals, 0)
}
