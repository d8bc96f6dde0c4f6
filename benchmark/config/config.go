// Package config 加载 syncbench 的配置，字段默认值通过 go-zero 的 json tag 声明。
package config

import (
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"syncbench/benchmark/harness"
	countercontention "syncbench/lock/performance/counter-contention"
)

type Config struct {
	Log       logx.LogConf
	Benchmark harness.Options
	Counter   countercontention.Iterations
	// Cases 为空时运行默认启用的基准
	Cases  []string `json:",optional"`
	Format string   `json:",default=text,options=text|json"`
	Diag   DiagConf
}

// DiagConf gops 诊断代理
type DiagConf struct {
	Enabled bool   `json:",default=false"`
	Addr    string `json:",optional"`
}

// Load 从文件加载配置，文件中可以用 ${VAR} 引用环境变量；path 为空时只使用默认值
func Load(path string) (Config, error) {
	var c Config
	if path == "" {
		if err := conf.FillDefault(&c); err != nil {
			return c, fmt.Errorf("fill default config: %w", err)
		}
	} else if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return c, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if err := c.Benchmark.Validate(); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	if c.Counter.SingleThread <= 0 || c.Counter.Worker <= 0 {
		return errors.New("counter: iterations must be positive")
	}
	return nil
}
