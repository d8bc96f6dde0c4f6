package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// Runner 按 Options 运行基准
type Runner struct {
	opts Options
	fork forker
}

// NewRunner 创建运行器，Forks > 0 时每个fork重新执行当前程序
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fork, err := newExecForker()
	if err != nil {
		return nil, err
	}
	return &Runner{opts: opts, fork: fork}, nil
}

// Options 运行参数
func (r *Runner) Options() Options { return r.opts }

// Run 运行一个基准并汇总结果。Forks 为0时在当前进程中测量。
func (r *Runner) Run(ctx context.Context, b Benchmark) (*Result, error) {
	if b.Run == nil {
		return nil, fmt.Errorf("benchmark %s: nil run func", b.Name)
	}

	logx.Infof("# Benchmark: %s (mode %s, unit %s, warmup %d, iterations %d x %v, forks %d)",
		b.Name, r.opts.Mode, r.opts.TimeUnit, r.opts.Warmup, r.opts.Iterations, r.opts.Time, r.opts.Forks)

	var iterations [][]time.Duration
	if r.opts.Forks == 0 {
		its, err := r.Measure(ctx, b)
		if err != nil {
			return nil, err
		}
		iterations = its
	} else {
		for i := 1; i <= r.opts.Forks; i++ {
			logx.Infof("# Fork: %d of %d", i, r.opts.Forks)
			its, err := r.fork.run(ctx, b.Name)
			if err != nil {
				return nil, fmt.Errorf("benchmark %s fork %d: %w", b.Name, i, err)
			}
			iterations = append(iterations, its...)
		}
	}

	res, err := Summarize(b.Name, r.opts, iterations)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", b.Name, err)
	}
	logx.Infow("benchmark finished",
		logx.Field("name", res.Name),
		logx.Field("score", res.Score),
		logx.Field("unit", res.Unit+"/op"),
		logx.Field("samples", res.Samples))
	return res, nil
}

// Measure 在当前进程中预热并测量，返回每轮测量中每次调用的耗时，预热数据被丢弃
func (r *Runner) Measure(ctx context.Context, b Benchmark) ([][]time.Duration, error) {
	bh := new(Blackhole)
	for i := 1; i <= r.opts.Warmup; i++ {
		samples, err := r.iteration(ctx, b, bh)
		if err != nil {
			return nil, fmt.Errorf("benchmark %s warmup %d: %w", b.Name, i, err)
		}
		logx.Infof("# Warmup Iteration %2d: %s", i, r.format(samples))
	}

	iterations := make([][]time.Duration, 0, r.opts.Iterations)
	for i := 1; i <= r.opts.Iterations; i++ {
		samples, err := r.iteration(ctx, b, bh)
		if err != nil {
			return nil, fmt.Errorf("benchmark %s iteration %d: %w", b.Name, i, err)
		}
		logx.Infof("Iteration %2d: %s", i, r.format(samples))
		iterations = append(iterations, samples)
	}
	return iterations, nil
}

// iteration 调用一次 Setup，然后反复调用被测函数直到用完时间片，至少调用一次。
// 被测函数一旦开始就会运行到结束，ctx 只在两次调用之间检查。
func (r *Runner) iteration(ctx context.Context, b Benchmark, bh *Blackhole) ([]time.Duration, error) {
	if b.Setup != nil {
		b.Setup()
	}

	var samples []time.Duration
	deadline := time.Now().Add(r.opts.Time)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		b.Run(bh)
		samples = append(samples, time.Since(start))
		if !time.Now().Before(deadline) {
			return samples, nil
		}
	}
}

func (r *Runner) format(samples []time.Duration) string {
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	avg := float64(total) / float64(len(samples)) / float64(r.opts.unit())
	return fmt.Sprintf("%.3f %s/op (%d ops)", avg, r.opts.TimeUnit, len(samples))
}
