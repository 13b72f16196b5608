// parbench benchmarks embarrassingly parallel workloads, running each one
// sequentially and on a worker pool and comparing the two.
//
// Usage:
//
//	parbench [-f config.yaml] [-json] [-gops] [1|2|3|4|5|all]
//
// Without an exercise argument and with a terminal on standard input,
// parbench shows a menu. The exit status is the number of failed
// exercises.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/gops/agent"
	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel"
	"golang.org/x/term"

	"github.com/exascience/parbench/config"
	"github.com/exascience/parbench/metrics"
	"github.com/exascience/parbench/report"
	"github.com/exascience/parbench/suite"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	var (
		configFile  string
		jsonOutput  bool
		diagnostics bool
	)
	flag.StringVar(&configFile, "f", "", "configuration file (json, yaml, or toml)")
	flag.BoolVar(&jsonOutput, "json", false, "write results as JSON")
	flag.BoolVar(&diagnostics, "gops", false, "start the gops diagnostics agent")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Usage: parbench [flags] [1|2|3|4|5|all]\n")
		return 1
	}

	c := config.Default()
	if configFile != "" {
		var err error
		if c, err = config.Load(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", configFile, err)
			return 1
		}
	}
	logx.MustSetup(c.Log)
	defer logx.Close()
	if c.Log.Mode == "console" {
		logx.SetWriter(logx.NewWriter(os.Stderr))
	}

	if diagnostics {
		if err := agent.Listen(agent.Options{}); err != nil {
			logx.Errorf("gops agent: %v", err)
		} else {
			defer agent.Close()
		}
	}

	recorder, err := metrics.New(otel.GetMeterProvider().Meter(metrics.ScopeName))
	if err != nil {
		logx.Errorf("metrics: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli{
		env:  suite.Env{Config: c, Recorder: recorder},
		out:  os.Stdout,
		json: jsonOutput,
	}
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil {
			app.width = width
		}
	}

	var failed int
	switch {
	case flag.NArg() == 1:
		failed, err = app.run(ctx, flag.Arg(0))
	case term.IsTerminal(int(os.Stdin.Fd())):
		failed = app.interactive(ctx, os.Stdin)
	default:
		failed, err = app.run(ctx, "all")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		failed = 1
	}
	return failed
}

type cli struct {
	env   suite.Env
	out   io.Writer
	json  bool
	width int
}

// run runs the exercises named by selector and reports their results. It
// returns the number of failed exercises.
func (c *cli) run(ctx context.Context, selector string) (int, error) {
	exercises, err := suite.Select(selector)
	if err != nil {
		return 0, err
	}
	results := suite.RunAll(ctx, c.env, exercises)
	if c.json {
		if err := report.JSON(c.out, results); err != nil {
			return results.Failed(), err
		}
	} else {
		r := report.NewReporter(c.out)
		r.Width = c.width
		r.Report(results)
	}
	return results.Failed(), nil
}

func (c *cli) menu() {
	fmt.Fprintln(c.out, "\nparbench exercises:")
	for _, e := range suite.Exercises() {
		fmt.Fprintf(c.out, "  %d. %s\n", e.ID, e.Name)
	}
	fmt.Fprintln(c.out, "  5. all of the above")
	fmt.Fprintln(c.out, "  0. exit")
	fmt.Fprint(c.out, "Choice: ")
}

// interactive reads menu choices from in until it reads 0 or reaches the
// end of input. It returns the total number of failed exercises.
func (c *cli) interactive(ctx context.Context, in io.Reader) (failed int) {
	scanner := bufio.NewScanner(in)
	for {
		c.menu()
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return
		}
		choice := strings.TrimSpace(scanner.Text())
		switch choice {
		case "":
			continue
		case "0":
			return
		}
		n, err := c.run(ctx, choice)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		failed += n
	}
}
