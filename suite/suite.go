/*
Package suite defines the four benchmark exercises of the parbench command
and runs them.

Each exercise generates its input batch from the configured seed, runs one
or more benchmarks through bench.Run, and returns their summaries. RunAll
runs a selection of exercises and records a failing or panicking exercise
without giving up on the others.
*/
package suite

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/bench"
	"github.com/exascience/parbench/config"
	"github.com/exascience/parbench/internal"
	"github.com/exascience/parbench/metrics"
	"github.com/exascience/parbench/workload"
)

// Env is what an exercise runs with.
type Env struct {
	Config   config.Config
	Recorder *metrics.Recorder
}

func (env Env) rng() *rand.Rand {
	return rand.New(rand.NewPCG(env.Config.Seed, env.Config.Seed))
}

// An Exercise is a named group of benchmarks.
type Exercise struct {
	ID   int
	Name string
	Run  func(ctx context.Context, env Env) ([]bench.Summary, error)
}

// Exercises returns all exercises, ordered by ID.
func Exercises() []Exercise {
	return []Exercise{
		{1, "grayscale conversion", runGrayscale},
		{2, "vector sum", runVectorSum},
		{3, "linear search", runSearch},
		{4, "fall time simulation", runFall},
	}
}

// Select returns the exercises named by selector: an exercise ID from 1
// to 4, or "5" or "all" for all of them.
func Select(selector string) ([]Exercise, error) {
	selector = strings.TrimSpace(strings.ToLower(selector))
	if selector == "5" || selector == "all" {
		return Exercises(), nil
	}
	for _, e := range Exercises() {
		if selector == fmt.Sprint(e.ID) {
			return []Exercise{e}, nil
		}
	}
	return nil, fmt.Errorf("unknown exercise %q", selector)
}

func options[O any](env Env, mode parbench.Mode, equal func(a, b O) bool) (bench.Options[O], error) {
	pool, err := env.Config.Pool()
	if err != nil {
		return bench.Options[O]{}, err
	}
	return bench.Options[O]{
		Workers:     pool.Workers,
		Mode:        mode,
		Schedule:    pool.Schedule,
		ItemTimeout: pool.ItemTimeout,
		Equal:       equal,
		Recorder:    env.Recorder,
	}, nil
}

func mode(env Env) parbench.Mode {
	m, err := parbench.ParseMode(env.Config.Mode)
	if err != nil {
		return parbench.CPUBound
	}
	return m
}

// Grayscale conversion writes files, so it always runs on an I/O-bound
// pool.
func runGrayscale(ctx context.Context, env Env) ([]bench.Summary, error) {
	c := env.Config.Images
	images := workload.SampleImages(env.rng(), c.Count, c.Width, c.Height)
	opts, err := options(env, parbench.IOBound, workload.EqualGray)
	if err != nil {
		return nil, err
	}
	outcome, err := bench.Run[workload.Image, workload.GrayImage](ctx, "grayscale conversion", images,
		workload.Grayscale{OutputDir: c.OutputDir}, opts)
	if err != nil {
		return nil, err
	}
	return []bench.Summary{outcome.Summary(workload.GrayImage.String)}, nil
}

func runVectorSum(ctx context.Context, env Env) ([]bench.Summary, error) {
	c := env.Config.Vectors
	vectors := workload.SampleVectors(env.rng(), c.Count, c.Size)
	opts, err := options(env, mode(env), workload.EqualSum(env.Config.Tolerance))
	if err != nil {
		return nil, err
	}
	outcome, err := bench.Run[[]float64, workload.Sum](ctx, "vector sum", vectors,
		workload.VectorSum{Rounds: c.Rounds}, opts)
	if err != nil {
		return nil, err
	}
	return []bench.Summary{outcome.Summary(workload.Sum.String)}, nil
}

func runSearch(ctx context.Context, env Env) ([]bench.Summary, error) {
	c := env.Config.Search
	vectors := workload.SampleSearchVectors(env.rng(), c.Count, c.Size)
	opts, err := options(env, mode(env), bench.Exact[workload.Match]())
	if err != nil {
		return nil, err
	}
	search := parbench.Func[workload.Query, workload.Match](workload.Search)
	var summaries []bench.Summary
	for _, target := range env.Config.SearchTargets() {
		name := fmt.Sprintf("linear search for %d", target)
		outcome, err := bench.Run[workload.Query, workload.Match](ctx, name, workload.Queries(vectors, target), search, opts)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, outcome.Summary(workload.Match.String))
	}
	return summaries, nil
}

func runFall(ctx context.Context, env Env) ([]bench.Summary, error) {
	c := env.Config.Fall
	objects := workload.SampleObjects(env.rng(), c.Count)
	opts, err := options(env, mode(env), workload.EqualLanding(env.Config.Tolerance))
	if err != nil {
		return nil, err
	}
	outcome, err := bench.Run[workload.Object, workload.Landing](ctx, "fall time simulation", objects,
		workload.Fall{Step: c.Step, MaxTime: c.MaxTime}, opts)
	if err != nil {
		return nil, err
	}
	return []bench.Summary{outcome.Summary(workload.Landing.String)}, nil
}

// A Result is the result of running one exercise. If Err is not nil,
// Summaries holds the benchmarks completed before the failure.
type Result struct {
	Exercise  Exercise
	Summaries []bench.Summary
	Err       error
}

// Results are the results of RunAll.
type Results []Result

// Failed returns the number of exercises that failed.
func (rs Results) Failed() (n int) {
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return
}

// RunAll runs the given exercises one after the other. An exercise that
// returns an error or panics is recorded as failed, and the remaining
// exercises still run.
func RunAll(ctx context.Context, env Env, exercises []Exercise) Results {
	results := make(Results, 0, len(exercises))
	for _, e := range exercises {
		summaries, err := run(ctx, env, e)
		if err != nil {
			logx.WithContext(ctx).Errorw("exercise failed",
				logx.Field("exercise", e.Name),
				logx.Field("error", err.Error()))
		}
		results = append(results, Result{Exercise: e, Summaries: summaries, Err: err})
	}
	return results
}

func run(ctx context.Context, env Env, e Exercise) (summaries []bench.Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("exercise %d: %w", e.ID, internal.WrapPanic(p))
		}
	}()
	return e.Run(ctx, env)
}
