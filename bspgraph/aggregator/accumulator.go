package aggregator

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64SumAccumulator implements a concurrent-safe accumulator that sums
// float64 values.
type Float64SumAccumulator struct {
	prevSum float64
	curSum  float64
}

// Type implements bspgraph.Aggregator.
func (a *Float64SumAccumulator) Type() string {
	return "Float64SumAccumulator"
}

// Get returns the current value of the accumulator.
func (a *Float64SumAccumulator) Get() interface{} {
	return loadFloat64(&a.curSum)
}

// Set the current value of the accumulator.
func (a *Float64SumAccumulator) Set(v interface{}) {
	for v64 := v.(float64); ; {
		oldCur := loadFloat64(&a.curSum)
		oldPrev := loadFloat64(&a.prevSum)
		swappedCur := atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curSum)),
			math.Float64bits(oldCur),
			math.Float64bits(v64),
		)
		swappedPrev := atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.prevSum)),
			math.Float64bits(oldPrev),
			math.Float64bits(v64),
		)
		if swappedCur && swappedPrev {
			return
		}
	}
}

// Aggregate adds a float64 value to the accumulator.
func (a *Float64SumAccumulator) Aggregate(v interface{}) {
	for v64 := v.(float64); ; {
		oldV := loadFloat64(&a.curSum)
		newV := oldV + v64
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curSum)),
			math.Float64bits(oldV),
			math.Float64bits(newV),
		) {
			return
		}
	}
}

// Delta returns the change in the accumulator value since the last call to
// Delta or the last call to Set.
func (a *Float64SumAccumulator) Delta() interface{} {
	for {
		curSum := loadFloat64(&a.curSum)
		prevSum := loadFloat64(&a.prevSum)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.prevSum)),
			math.Float64bits(prevSum),
			math.Float64bits(curSum),
		) {
			return curSum - prevSum
		}
	}
}

// Float64MaxAccumulator implements a concurrent-safe accumulator that tracks
// the maximum of the aggregated float64 values.
type Float64MaxAccumulator struct {
	prevMax float64
	curMax  float64
}

// Type implements bspgraph.Aggregator.
func (a *Float64MaxAccumulator) Type() string {
	return "Float64MaxAccumulator"
}

// Get returns the current value of the accumulator.
func (a *Float64MaxAccumulator) Get() interface{} {
	return loadFloat64(&a.curMax)
}

// Set the current value of the accumulator.
func (a *Float64MaxAccumulator) Set(v interface{}) {
	for v64 := v.(float64); ; {
		oldCur := loadFloat64(&a.curMax)
		oldPrev := loadFloat64(&a.prevMax)
		swappedCur := atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldCur),
			math.Float64bits(v64),
		)
		swappedPrev := atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.prevMax)),
			math.Float64bits(oldPrev),
			math.Float64bits(v64),
		)
		if swappedCur && swappedPrev {
			return
		}
	}
}

// Aggregate folds a float64 value into the tracked maximum.
func (a *Float64MaxAccumulator) Aggregate(v interface{}) {
	for v64 := v.(float64); ; {
		oldV := loadFloat64(&a.curMax)
		if v64 <= oldV {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldV),
			math.Float64bits(v64),
		) {
			return
		}
	}
}

// Delta returns the change in the tracked maximum since the last call to
// Delta or the last call to Set.
func (a *Float64MaxAccumulator) Delta() interface{} {
	for {
		curMax := loadFloat64(&a.curMax)
		prevMax := loadFloat64(&a.prevMax)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.prevMax)),
			math.Float64bits(prevMax),
			math.Float64bits(curMax),
		) {
			return curMax - prevMax
		}
	}
}

func loadFloat64(v *float64) float64 {
	return math.Float64frombits(
		atomic.LoadUint64((*uint64)(unsafe.Pointer(v))),
	)
}

// IntAccumulator implements a concurrent-safe accumulator that sums int
// values.
type IntAccumulator struct {
	prevSum int64
	curSum  int64
}

// Type implements bspgraph.Aggregator.
func (a *IntAccumulator) Type() string {
	return "IntAccumulator"
}

// Get returns the current value of the accumulator.
func (a *IntAccumulator) Get() interface{} {
	return int(atomic.LoadInt64(&a.curSum))
}

// Set the current value of the accumulator.
func (a *IntAccumulator) Set(v interface{}) {
	for v64 := int64(v.(int)); ; {
		oldCur := a.curSum
		oldPrev := a.prevSum
		swappedCur := atomic.CompareAndSwapInt64(&a.curSum, oldCur, v64)
		swappedPrev := atomic.CompareAndSwapInt64(&a.prevSum, oldPrev, v64)
		if swappedCur && swappedPrev {
			return
		}
	}
}

// Aggregate adds an int value to the accumulator.
func (a *IntAccumulator) Aggregate(v interface{}) {
	_ = atomic.AddInt64(&a.curSum, int64(v.(int)))
}

// Delta returns the change in the accumulator value since the last call to
// Delta or the last call to Set.
func (a *IntAccumulator) Delta() interface{} {
	for {
		curSum := atomic.LoadInt64(&a.curSum)
		prevSum := atomic.LoadInt64(&a.prevSum)
		if atomic.CompareAndSwapInt64(&a.prevSum, prevSum, curSum) {
			return int(curSum - prevSum)
		}
	}
}
