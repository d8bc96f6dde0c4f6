// Package suite 汇总两组互不相关的基准：计数器竞争（counter）与标量数学（math）。
package suite

import (
	"fmt"
	"strings"

	"syncbench/benchmark/harness"
	countercontention "syncbench/lock/performance/counter-contention"
	sqrtvscos "syncbench/math/performance/sqrt-vs-cos"
)

const (
	CounterSuite = "counter"
	MathSuite    = "math"
)

// Registry 按声明顺序保存全部基准
type Registry struct {
	benchmarks []harness.Benchmark
}

// New 注册全部基准，计数器用例使用给定的自增次数
func New(it countercontention.Iterations) *Registry {
	r := new(Registry)
	for _, c := range countercontention.Cases() {
		r.benchmarks = append(r.benchmarks, harness.Benchmark{
			Name: CounterSuite + "/" + c.String(),
			Run: func(bh *harness.Blackhole) {
				bh.ConsumeInt64(c.Run(it))
			},
			Enabled: c.EnabledByDefault(),
		})
	}

	sqrt := new(sqrtvscos.Sqrt)
	r.benchmarks = append(r.benchmarks, harness.Benchmark{
		Name:  MathSuite + "/sqrt",
		Setup: sqrt.Setup,
		Run: func(bh *harness.Blackhole) {
			bh.ConsumeFloat64(sqrt.Measure())
		},
		Enabled: true,
	})

	cmp := new(sqrtvscos.Sqrt)
	r.benchmarks = append(r.benchmarks, harness.Benchmark{
		Name:  MathSuite + "/sqrt-vs-cos",
		Setup: cmp.Setup,
		Run: func(bh *harness.Blackhole) {
			s, c := sqrtvscos.SqrtVsCos(cmp.Sample())
			bh.ConsumeFloat64(s + c)
		},
	})
	return r
}

// All 返回全部基准，包括默认未启用的
func (r *Registry) All() []harness.Benchmark {
	return append([]harness.Benchmark(nil), r.benchmarks...)
}

// Lookup 按完整名称查找基准
func (r *Registry) Lookup(name string) (harness.Benchmark, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range r.benchmarks {
		if b.Name == name {
			return b, nil
		}
	}
	return harness.Benchmark{}, fmt.Errorf("%w: %s", harness.ErrUnknownBenchmark, name)
}

// Select 解析要运行的基准。names 为空时返回默认启用的基准；
// 名称可以是完整名称（counter/two-thread-mutex）或整组（counter），结果按注册顺序去重。
func (r *Registry) Select(names []string) ([]harness.Benchmark, error) {
	if len(names) == 0 {
		var enabled []harness.Benchmark
		for _, b := range r.benchmarks {
			if b.Enabled {
				enabled = append(enabled, b)
			}
		}
		return enabled, nil
	}

	picked := make(map[string]bool, len(r.benchmarks))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		matched := false
		for _, b := range r.benchmarks {
			if b.Name == name || strings.HasPrefix(b.Name, name+"/") {
				picked[b.Name] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: %s", harness.ErrUnknownBenchmark, name)
		}
	}

	selected := make([]harness.Benchmark, 0, len(picked))
	for _, b := range r.benchmarks {
		if picked[b.Name] {
			selected = append(selected, b)
		}
	}
	return selected, nil
}
