package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"syncbench/benchmark/config"
	"syncbench/benchmark/harness"
	"syncbench/benchmark/suite"
)

var (
	configFile = flag.String("f", "", "the config file, defaults are used when empty")
	cases      = flag.String("case", "", "comma separated benchmarks or suites to run, overrides Cases")
	format     = flag.String("format", "", "report format, text or json, overrides Format")
	list       = flag.Bool("list", false, "list all benchmarks and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		logx.Error(err)
		logx.Close()
		os.Exit(1)
	}
	logx.Close()
}

func run() error {
	c, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *cases != "" {
		c.Cases = strings.Split(*cases, ",")
	}
	if *format != "" {
		c.Format = *format
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("unsupported format %q", c.Format)
	}

	logx.MustSetup(c.Log)
	logx.DisableStat()
	// stdout 只留给报告
	logx.SetWriter(logx.NewWriter(os.Stderr))

	registry := suite.New(c.Counter)
	if *list {
		for _, b := range registry.All() {
			fmt.Printf("%-30s enabled=%t\n", b.Name, b.Enabled)
		}
		return nil
	}

	runner, err := harness.NewRunner(c.Benchmark)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	threading.GoSafe(func() {
		select {
		case sig := <-sigs:
			logx.Infof("received %v, stopping after the current invocation", sig)
			cancel()
		case <-ctx.Done():
		}
	})

	if name, out, ok := harness.ForkChild(); ok {
		b, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		return runner.RunForkChild(ctx, b, out)
	}

	if c.Diag.Enabled {
		if err := agent.Listen(agent.Options{Addr: c.Diag.Addr}); err != nil {
			logx.Errorf("start gops agent: %v", err)
		} else {
			defer agent.Close()
		}
	}

	selected, err := registry.Select(c.Cases)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no benchmark selected")
	}

	results := make([]*harness.Result, 0, len(selected))
	for _, b := range selected {
		res, err := runner.Run(ctx, b)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if c.Format == "json" {
		return harness.WriteJSON(os.Stdout, results)
	}
	return harness.WriteText(os.Stdout, results)
}
