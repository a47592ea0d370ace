package bspgraph_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rankworks/graphrank/bspgraph"
	"github.com/rankworks/graphrank/bspgraph/aggregator"
	"github.com/rankworks/graphrank/bspgraph/message"
	"github.com/rankworks/graphrank/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(EngineTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type EngineTestSuite struct {
}

func (s *EngineTestSuite) TestMessageExchange(c *gc.C) {
	topo := mustBuildTopology(c, []string{"0", "1"}, [][2]string{
		{"0", "1"},
		{"1", "0"},
	})

	values := make([]int64, topo.NumVertices())
	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph: topo,
		ComputeFn: func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
			v.Freeze()
			if e.Superstep() == 0 {
				return e.BroadcastToNeighbors(v, intMsg{value: 42})
			}

			for msgIt.Next() {
				values[v.Index()] = int64(msgIt.Message().(intMsg).value)
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	err = execFixedSteps(eng, 2)
	c.Assert(err, gc.IsNil)

	for i := 0; i < topo.NumVertices(); i++ {
		c.Assert(values[i], gc.Equals, int64(42), gc.Commentf("vertex %v", topo.VertexID(i)))
	}
}

func (s *EngineTestSuite) TestMessageBroadcasting(c *gc.C) {
	topo := mustBuildTopology(c, []string{"0", "1", "2", "3"}, [][2]string{
		{"0", "1"},
		{"0", "2"},
		{"0", "3"},
	})

	values := make([]int64, topo.NumVertices())
	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph: topo,
		ComputeFn: func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
			if err := e.BroadcastToNeighbors(v, intMsg{value: 42}); err != nil {
				return err
			}
			for msgIt.Next() {
				values[v.Index()] = int64(msgIt.Message().(intMsg).value)
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	values[0] = 42
	err = execFixedSteps(eng, 2)
	c.Assert(err, gc.IsNil)

	for i := 0; i < topo.NumVertices(); i++ {
		c.Assert(values[i], gc.Equals, int64(42), gc.Commentf("vertex %v", topo.VertexID(i)))
	}
}

func (s *EngineTestSuite) TestAggregator(c *gc.C) {
	numVerts := 1000
	ids := make([]string, numVerts)
	for i := 0; i < numVerts; i++ {
		ids[i] = fmt.Sprint(i)
	}
	topo := mustBuildTopology(c, ids, nil)

	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph:          topo,
		ComputeWorkers: 4,
		ComputeFn: func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
			e.Aggregator("counter").Aggregate(1)
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	offset := 5
	eng.RegisterAggregator("counter", new(aggregator.IntAccumulator))
	eng.Aggregator("counter").Aggregate(offset)

	err = execFixedSteps(eng, 1)
	c.Assert(err, gc.IsNil)

	aggrMap := eng.Aggregators()
	c.Assert(aggrMap["counter"].Get(), gc.Equals, numVerts+offset)
}

func (s *EngineTestSuite) TestFreezeAndReactivation(c *gc.C) {
	topo := mustBuildTopology(c, []string{"ping", "pong"}, [][2]string{
		{"ping", "pong"},
	})

	pongIdx, exists := topo.Index("pong")
	c.Assert(exists, gc.Equals, true)

	var processedInStep1 int64
	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph: topo,
		ComputeFn: func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
			if e.Superstep() == 1 {
				atomic.AddInt64(&processedInStep1, 1)
			}
			v.Freeze()
			if e.Superstep() == 0 && v.ID() == "ping" {
				return e.SendMessage(pongIdx, intMsg{value: 1})
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	var activePerStep []int
	exec := bspgraph.NewExecutor(eng, bspgraph.ExecutorCallbacks{
		PostStep: func(_ context.Context, _ *bspgraph.Engine, activeInStep int) error {
			activePerStep = append(activePerStep, activeInStep)
			return nil
		},
	})
	c.Assert(exec.RunSteps(context.TODO(), 3), gc.IsNil)

	// Step 0 processes both vertices; step 1 re-activates only the message
	// recipient; step 2 finds every vertex frozen with no pending messages.
	c.Assert(activePerStep, gc.DeepEquals, []int{2, 1, 0})
	c.Assert(processedInStep1, gc.Equals, int64(1))
}

func (s *EngineTestSuite) TestHandleComputeFuncError(c *gc.C) {
	numVerts := 1000
	ids := make([]string, numVerts)
	for i := 0; i < numVerts; i++ {
		ids[i] = fmt.Sprint(i)
	}
	topo := mustBuildTopology(c, ids, nil)

	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph:          topo,
		ComputeWorkers: 4,
		ComputeFn: func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
			if v.ID() == "50" {
				return errors.New("something went wrong")
			}
			return nil
		},
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	err = execFixedSteps(eng, 1)
	c.Assert(err, gc.ErrorMatches, `running compute function for vertex "50" failed: something went wrong`)
}

func (s *EngineTestSuite) TestSendMessageToInvalidDestination(c *gc.C) {
	topo := mustBuildTopology(c, []string{"solo"}, nil)

	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph:     topo,
		ComputeFn: func(*bspgraph.Engine, *bspgraph.Vertex, message.Iterator) error { return nil },
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	err = eng.SendMessage(1, intMsg{value: 42})
	c.Assert(xerrors.Is(err, bspgraph.ErrInvalidMessageDestination), gc.Equals, true)
}

func (s *EngineTestSuite) TestEngineConfigValidation(c *gc.C) {
	_, err := bspgraph.NewEngine(bspgraph.EngineConfig{})
	c.Assert(err, gc.ErrorMatches, "(?ms).*topology not specified.*")
	c.Assert(err, gc.ErrorMatches, "(?ms).*compute function not specified.*")
}

func (s *EngineTestSuite) TestContextCancellationBetweenSupersteps(c *gc.C) {
	topo := mustBuildTopology(c, []string{"0", "1"}, nil)

	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph:     topo,
		ComputeFn: func(*bspgraph.Engine, *bspgraph.Vertex, message.Iterator) error { return nil },
	})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(eng.Close(), gc.IsNil) }()

	ctx, cancelFn := context.WithCancel(context.TODO())
	exec := bspgraph.NewExecutor(eng, bspgraph.ExecutorCallbacks{
		PostStep: func(context.Context, *bspgraph.Engine, int) error {
			cancelFn()
			return nil
		},
	})

	err = exec.RunToCompletion(ctx)
	c.Assert(err, gc.Equals, context.Canceled)
	c.Assert(eng.Superstep(), gc.Equals, 1, gc.Commentf("cancellation must be detected before starting the next superstep"))
}

type intMsg struct {
	value int
}

func (m intMsg) Type() string { return "intMsg" }

func mustBuildTopology(c *gc.C, ids []string, edges [][2]string) *graph.Graph {
	b := graph.NewBuilder()
	for _, id := range ids {
		b.AddVertex(id)
	}
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	topo, err := b.Build()
	c.Assert(err, gc.IsNil)
	return topo
}

func execFixedSteps(eng *bspgraph.Engine, numSteps int) error {
	exec := bspgraph.NewExecutor(eng, bspgraph.ExecutorCallbacks{})
	return exec.RunSteps(context.TODO(), numSteps)
}
