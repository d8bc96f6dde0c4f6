// Package harness 一个最小化的基准测试运行器：预热、按时间片测量、统计每次调用耗时的分布，
// 可选地在子进程中运行（fork）以隔离不同用例之间的JIT/GC/调度状态。
package harness

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ModeSample 报告每次调用耗时的分布（均值、分位数）
	ModeSample = "sample"
	// ModeAverage 报告每轮测量的平均耗时
	ModeAverage = "avgt"
)

// ErrUnknownBenchmark 按名称找不到基准
var ErrUnknownBenchmark = errors.New("unknown benchmark")

var timeUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
}

// Options 一组基准共享的运行参数，默认值与 fork 1 / 预热3轮 / 测量10轮每轮2s / 毫秒 / 采样模式一致
type Options struct {
	Warmup     int           `json:",default=3"`
	Iterations int           `json:",default=10"`
	Time       time.Duration `json:",default=2s"`
	Forks      int           `json:",default=1"`
	TimeUnit   string        `json:",default=ms,options=ns|us|ms|s"`
	Mode       string        `json:",default=sample,options=sample|avgt"`
}

// DefaultOptions 返回默认运行参数
func DefaultOptions() Options {
	return Options{
		Warmup:     3,
		Iterations: 10,
		Time:       2 * time.Second,
		Forks:      1,
		TimeUnit:   "ms",
		Mode:       ModeSample,
	}
}

func (o Options) Validate() error {
	if o.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative: %d", o.Warmup)
	}
	if o.Iterations < 1 {
		return fmt.Errorf("iterations must be positive: %d", o.Iterations)
	}
	if o.Time <= 0 {
		return fmt.Errorf("time must be positive: %v", o.Time)
	}
	if o.Forks < 0 {
		return fmt.Errorf("forks must not be negative: %d", o.Forks)
	}
	if _, ok := timeUnits[o.TimeUnit]; !ok {
		return fmt.Errorf("unsupported time unit %q", o.TimeUnit)
	}
	if o.Mode != ModeSample && o.Mode != ModeAverage {
		return fmt.Errorf("unsupported mode %q", o.Mode)
	}
	return nil
}

func (o Options) unit() time.Duration {
	if u, ok := timeUnits[o.TimeUnit]; ok {
		return u
	}
	return time.Millisecond
}

// Blackhole 接收被测函数的返回值，防止编译器把计算当作死代码消除
type Blackhole struct {
	i int64
	f float64
}

func (bh *Blackhole) ConsumeInt64(v int64) { bh.i = v }

func (bh *Blackhole) ConsumeFloat64(v float64) { bh.f = v }

// Int64 最近一次接收的整数
func (bh *Blackhole) Int64() int64 { return bh.i }

// Float64 最近一次接收的浮点数
func (bh *Blackhole) Float64() float64 { return bh.f }

// Benchmark 一个可运行的基准
type Benchmark struct {
	Name string
	// Setup 每轮测量（含预热）开始前调用一次，可为空
	Setup func()
	Run   func(bh *Blackhole)
	// Enabled 未显式选择时是否运行
	Enabled bool
}
