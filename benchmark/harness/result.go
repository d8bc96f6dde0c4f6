package harness

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/montanaflynn/stats"
)

// Result 一个基准的汇总结果，数值单位为 Unit
type Result struct {
	Name       string  `json:"name"`
	Mode       string  `json:"mode"`
	Unit       string  `json:"unit"`
	Iterations int     `json:"iterations"`
	Samples    int     `json:"samples"`
	Score      float64 `json:"score"`
	StdDev     float64 `json:"stddev"`
	Min        float64 `json:"min"`
	P50        float64 `json:"p50,omitempty"`
	P90        float64 `json:"p90,omitempty"`
	P99        float64 `json:"p99,omitempty"`
	P999       float64 `json:"p999,omitempty"`
	Max        float64 `json:"max"`
}

var errNoSamples = errors.New("no samples")

// Summarize 汇总每轮测量的耗时。
// sample 模式下统计全部调用耗时的分布；avgt 模式下以每轮平均值为样本，不计算分位数。
func Summarize(name string, opts Options, iterations [][]time.Duration) (*Result, error) {
	unit := float64(opts.unit())
	var all, avgs stats.Float64Data
	for _, it := range iterations {
		if len(it) == 0 {
			continue
		}
		var sum float64
		for _, d := range it {
			v := float64(d) / unit
			all = append(all, v)
			sum += v
		}
		avgs = append(avgs, sum/float64(len(it)))
	}
	if len(all) == 0 {
		return nil, errNoSamples
	}

	res := &Result{
		Name:       name,
		Mode:       opts.Mode,
		Unit:       opts.TimeUnit,
		Iterations: len(avgs),
		Samples:    len(all),
	}

	data := all
	if opts.Mode == ModeAverage {
		data = avgs
	}
	// 输入非空时这些函数不会返回错误
	res.Score, _ = stats.Mean(data)
	res.StdDev, _ = stats.StandardDeviation(data)
	res.Min, _ = stats.Min(all)
	res.Max, _ = stats.Max(all)
	if opts.Mode == ModeSample {
		res.P50 = percentile(all, 50, res.Max)
		res.P90 = percentile(all, 90, res.Max)
		res.P99 = percentile(all, 99, res.Max)
		res.P999 = percentile(all, 99.9, res.Max)
	}
	return res, nil
}

func percentile(data stats.Float64Data, p, fallback float64) float64 {
	v, err := stats.PercentileNearestRank(data, p)
	if err != nil {
		return fallback
	}
	return v
}

// WriteText 以表格形式输出结果
func WriteText(w io.Writer, results []*Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Benchmark\tMode\tCnt\tScore\t\tError\tUnits\t")
	for _, r := range results {
		unit := r.Unit + "/op"
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\t±\t%.3f\t%s\t\n", r.Name, r.Mode, r.Samples, r.Score, r.StdDev, unit)
		if r.Mode != ModeSample {
			continue
		}
		for _, p := range []struct {
			label string
			v     float64
		}{
			{"p0.00", r.Min},
			{"p0.50", r.P50},
			{"p0.90", r.P90},
			{"p0.99", r.P99},
			{"p0.999", r.P999},
			{"p1.00", r.Max},
		} {
			fmt.Fprintf(tw, "%s:%s\t%s\t%d\t%.3f\t\t\t%s\t\n", r.Name, p.label, r.Mode, r.Samples, p.v, unit)
		}
	}
	return tw.Flush()
}

// WriteJSON 以JSON数组输出结果
func WriteJSON(w io.Writer, results []*Result) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
