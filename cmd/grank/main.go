package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/rankworks/graphrank/gframe"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

var (
	appName = "grank"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	logger = logrus.NewEntry(logrus.New())

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("rank calculation failed")
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "calculate PageRank scores for a tab-separated edge list"
	app.ArgsUsage = "[EDGE_LIST_FILE]"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "iterations",
			Usage: "Run exactly this many rank update rounds instead of running to convergence",
		},
		cli.Float64Flag{
			Name:  "tolerance",
			Value: 0.001,
			Usage: "Keep executing rank update rounds until the maximum rank change drops to this value",
		},
		cli.Float64Flag{
			Name:  "reset-probability",
			Usage: "The probability that a random surfer teleports to another node (defaults to 0.15)",
		},
		cli.StringFlag{
			Name:  "source",
			Usage: "Calculate ranks relative to this node instead of the whole graph (personalized variant)",
		},
		cli.IntFlag{
			Name:  "num-workers",
			Value: runtime.NumCPU(),
			Usage: "The number of workers to use for calculating PageRank scores",
		},
		cli.IntFlag{
			Name:  "max-supersteps",
			Usage: "Abort a convergence run that exceeds this number of supersteps (defaults to 1000)",
		},
		cli.BoolFlag{
			Name:  "edge-weights",
			Usage: "Also print a SRC, DST, FLOW row for each edge after the vertex ranks",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Cancel the run if we receive a signal; the calculator checks the
	// context between supersteps.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Info("aborting rank calculation due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	frame, err := loadFrame(appCtx.Args().First())
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"num_vertices": frame.NumVertices(),
		"num_edges":    frame.NumEdges(),
	}).Info("loaded edge list")

	run := frame.PageRank().
		ResetProbability(appCtx.Float64("reset-probability")).
		ComputeWorkers(appCtx.Int("num-workers")).
		MaxSupersteps(appCtx.Int("max-supersteps"))
	if numIterations := appCtx.Int("iterations"); numIterations > 0 {
		run = run.FixedIterations(numIterations)
	} else {
		run = run.UntilConvergence(appCtx.Float64("tolerance"))
	}
	if source := appCtx.String("source"); source != "" {
		run = run.Source(source)
	}

	ranked, err := run.Run(ctx)
	if err != nil {
		return err
	}

	summary := ranked.Summary()
	logger.WithFields(logrus.Fields{
		"mode":          summary.Mode.String(),
		"supersteps":    summary.Supersteps,
		"converged":     summary.Converged,
		"max_delta":     summary.MaxDelta,
		"total_rank":    summary.TotalRank,
		"dangling_rank": summary.DanglingRank,
	}).Info("completed PageRank run")

	return printRanks(os.Stdout, ranked, appCtx.Bool("edge-weights"))
}

// loadFrame parses a tab-separated edge list into a string-keyed frame. Each
// line either declares an edge (SRC, DST) or a single vertex with no edges.
// Blank lines and lines starting with '#' are skipped. When edgeListFile is
// empty or "-" the edge list is read from stdin.
func loadFrame(edgeListFile string) (*gframe.Frame, error) {
	var r io.Reader = os.Stdin
	if edgeListFile != "" && edgeListFile != "-" {
		f, err := os.Open(edgeListFile)
		if err != nil {
			return nil, xerrors.Errorf("could not open edge list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	b := gframe.NewBuilder(gframe.IDTypeString)
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		switch len(fields) {
		case 1:
			if err := b.AddVertex(gframe.VertexRow{ID: fields[0]}); err != nil {
				return nil, xerrors.Errorf("edge list line %d: %w", lineNum, err)
			}
		case 2:
			if err := b.AddVertex(gframe.VertexRow{ID: fields[0]}); err != nil {
				return nil, xerrors.Errorf("edge list line %d: %w", lineNum, err)
			}
			if err := b.AddVertex(gframe.VertexRow{ID: fields[1]}); err != nil {
				return nil, xerrors.Errorf("edge list line %d: %w", lineNum, err)
			}
			if err := b.AddEdge(gframe.EdgeRow{Src: fields[0], Dst: fields[1]}); err != nil {
				return nil, xerrors.Errorf("edge list line %d: %w", lineNum, err)
			}
		default:
			return nil, xerrors.Errorf("edge list line %d: expected SRC<TAB>DST but got %d fields", lineNum, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("could not read edge list: %w", err)
	}

	frame, err := b.Build()
	if err != nil {
		return nil, err
	}
	if frame.NumVertices() == 0 {
		return nil, xerrors.Errorf("edge list does not contain any vertices")
	}
	return frame, nil
}

// printRanks writes the vertex ranks to w ordered by descending rank, one
// ID, RANK pair per line. When withEdgeWeights is set it also emits an
// empty line followed by a SRC, DST, FLOW triplet for each edge.
func printRanks(w io.Writer, ranked *gframe.RankedFrame, withEdgeWeights bool) error {
	bw := bufio.NewWriter(w)

	// Sort a copy; the ranked frame keeps its own vertex order for
	// id-based lookups.
	verts := append([]gframe.RankedVertex(nil), ranked.Vertices()...)
	sort.SliceStable(verts, func(i, j int) bool { return verts[i].Weight > verts[j].Weight })
	for _, v := range verts {
		fmt.Fprintf(bw, "%v\t%g\n", v.ID, v.Weight)
	}

	if withEdgeWeights {
		fmt.Fprintln(bw)
		for _, e := range ranked.Edges() {
			fmt.Fprintf(bw, "%v\t%v\t%g\n", e.Src, e.Dst, e.Weight)
		}
	}
	return bw.Flush()
}
