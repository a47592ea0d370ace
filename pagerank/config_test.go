package pagerank_test

import (
	"github.com/rankworks/graphrank/graph"
	"github.com/rankworks/graphrank/pagerank"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ConfigTestSuite))

type ConfigTestSuite struct {
}

func (s *ConfigTestSuite) TestModeSelection(c *gc.C) {
	c.Assert(pagerank.FixedIterations(5).Mode(), gc.Equals, pagerank.ModeFixedIterations)
	c.Assert(pagerank.UntilConvergence(0.01).Mode(), gc.Equals, pagerank.ModeUntilConvergence)
	c.Assert(pagerank.FixedIterations(5).WithTolerance(0.01).Mode(), gc.Equals, pagerank.ModeUntilConvergence)

	c.Assert(pagerank.ModeFixedIterations.String(), gc.Equals, "fixed-iterations")
	c.Assert(pagerank.ModeUntilConvergence.String(), gc.Equals, "until-convergence")
}

func (s *ConfigTestSuite) TestOptionsAreImmutable(c *gc.C) {
	base := pagerank.FixedIterations(5)
	personalized := base.WithSource("A")

	c.Assert(base, gc.Not(gc.DeepEquals), personalized)
	c.Assert(base, gc.DeepEquals, pagerank.FixedIterations(5))
}

func (s *ConfigTestSuite) TestMissingTerminationCondition(c *gc.C) {
	_, err := pagerank.NewCalculator(s.singleVertexTopology(c), pagerank.Options{})
	c.Assert(xerrors.Is(err, pagerank.ErrMissingConfiguration), gc.Equals, true, gc.Commentf("got %v", err))
	c.Assert(err, gc.ErrorMatches, "(?ms).*either a fixed iteration count or a convergence tolerance must be specified.*")
}

func (s *ConfigTestSuite) TestInvalidArgumentValues(c *gc.C) {
	topo := s.singleVertexTopology(c)
	tests := []struct {
		descr   string
		opts    pagerank.Options
		expText string
	}{
		{
			descr:   "zero iteration count",
			opts:    pagerank.FixedIterations(0),
			expText: "(?ms).*iteration count must be a positive integer.*",
		},
		{
			descr:   "negative iteration count",
			opts:    pagerank.FixedIterations(-3),
			expText: "(?ms).*iteration count must be a positive integer.*",
		},
		{
			descr:   "zero tolerance",
			opts:    pagerank.UntilConvergence(0),
			expText: "(?ms).*convergence tolerance must be greater than zero.*",
		},
		{
			descr:   "negative tolerance",
			opts:    pagerank.UntilConvergence(-0.5),
			expText: "(?ms).*convergence tolerance must be greater than zero.*",
		},
		{
			descr:   "negative reset probability",
			opts:    pagerank.FixedIterations(5).WithResetProbability(-0.1),
			expText: `(?ms).*reset probability must lie in the range \(0, 1\).*`,
		},
		{
			descr:   "reset probability of one",
			opts:    pagerank.FixedIterations(5).WithResetProbability(1.0),
			expText: `(?ms).*reset probability must lie in the range \(0, 1\).*`,
		},
		{
			descr:   "negative compute worker count",
			opts:    pagerank.FixedIterations(5).WithComputeWorkers(-2),
			expText: "(?ms).*compute worker count must be a positive integer.*",
		},
		{
			descr:   "negative superstep allowance",
			opts:    pagerank.UntilConvergence(0.01).WithMaxSupersteps(-1),
			expText: "(?ms).*maximum superstep count must be a positive integer.*",
		},
	}

	for _, tc := range tests {
		c.Logf("case: %s", tc.descr)
		_, err := pagerank.NewCalculator(topo, tc.opts)
		c.Assert(xerrors.Is(err, pagerank.ErrInvalidArgument), gc.Equals, true, gc.Commentf("got %v", err))
		c.Assert(err, gc.ErrorMatches, tc.expText)
	}
}

func (s *ConfigTestSuite) TestMultipleValidationFailuresAreReported(c *gc.C) {
	_, err := pagerank.NewCalculator(s.singleVertexTopology(c), pagerank.FixedIterations(0).WithResetProbability(2.0))
	c.Assert(err, gc.ErrorMatches, "(?ms).*iteration count must be a positive integer.*")
	c.Assert(err, gc.ErrorMatches, `(?ms).*reset probability must lie in the range \(0, 1\).*`)
}

func (s *ConfigTestSuite) TestZeroValuesSelectDefaults(c *gc.C) {
	// Callers that assemble options from flag or config values chain the
	// setters unconditionally; zero values must select the documented
	// defaults instead of failing validation.
	opts := pagerank.FixedIterations(5).
		WithResetProbability(0).
		WithComputeWorkers(0).
		WithMaxSupersteps(0)

	_, err := pagerank.NewCalculator(s.singleVertexTopology(c), opts)
	c.Assert(err, gc.IsNil)
}

func (s *ConfigTestSuite) TestNilTopology(c *gc.C) {
	_, err := pagerank.NewCalculator(nil, pagerank.FixedIterations(5))
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidArgument), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *ConfigTestSuite) TestUnknownPersonalizationSource(c *gc.C) {
	_, err := pagerank.NewCalculator(s.singleVertexTopology(c), pagerank.FixedIterations(5).WithSource("B"))
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidArgument), gc.Equals, true, gc.Commentf("got %v", err))
	c.Assert(err, gc.ErrorMatches, `personalization source "B" is not part of the graph: invalid argument`)
}

func (s *ConfigTestSuite) singleVertexTopology(c *gc.C) *graph.Graph {
	b := graph.NewBuilder()
	b.AddVertex("A")
	topo, err := b.Build()
	c.Assert(err, gc.IsNil)
	return topo
}
