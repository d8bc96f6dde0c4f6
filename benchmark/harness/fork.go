package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bytedance/sonic"
)

// fork 子进程通过环境变量获知要运行的基准和结果文件
const (
	EnvForkCase = "SYNCBENCH_FORK_CASE"
	EnvForkOut  = "SYNCBENCH_FORK_OUT"
)

type forker interface {
	run(ctx context.Context, name string) ([][]time.Duration, error)
}

// execForker 以相同参数重新执行当前程序
type execForker struct {
	exe  string
	args []string
}

func newExecForker() (*execForker, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &execForker{exe: exe, args: os.Args[1:]}, nil
}

func (f *execForker) run(ctx context.Context, name string) ([][]time.Duration, error) {
	tmp, err := os.CreateTemp("", "syncbench-fork-*.json")
	if err != nil {
		return nil, fmt.Errorf("create fork output: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	cmd := exec.CommandContext(ctx, f.exe, f.args...)
	cmd.Env = append(os.Environ(), EnvForkCase+"="+name, EnvForkOut+"="+path)
	// 子进程的日志不能混进父进程 stdout 上的报告
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run child %s: %w", f.exe, err)
	}
	return readForkOutput(path)
}

type forkOutput struct {
	// 每轮测量中每次调用的耗时，单位纳秒
	Iterations [][]int64 `json:"iterations"`
}

// ForkChild 当前进程是 fork 子进程时，返回要运行的基准名和结果文件路径
func ForkChild() (name, out string, ok bool) {
	name, out = os.Getenv(EnvForkCase), os.Getenv(EnvForkOut)
	return name, out, name != "" && out != ""
}

// RunForkChild 在子进程中测量基准，把原始耗时写入结果文件供父进程汇总
func (r *Runner) RunForkChild(ctx context.Context, b Benchmark, out string) error {
	its, err := r.Measure(ctx, b)
	if err != nil {
		return err
	}
	return writeForkOutput(out, its)
}

func writeForkOutput(path string, iterations [][]time.Duration) error {
	fo := forkOutput{Iterations: make([][]int64, len(iterations))}
	for i, it := range iterations {
		ns := make([]int64, len(it))
		for j, d := range it {
			ns[j] = int64(d)
		}
		fo.Iterations[i] = ns
	}
	data, err := sonic.Marshal(&fo)
	if err != nil {
		return fmt.Errorf("encode fork output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write fork output: %w", err)
	}
	return nil
}

func readForkOutput(path string) ([][]time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fork output: %w", err)
	}
	var fo forkOutput
	if err := sonic.Unmarshal(data, &fo); err != nil {
		return nil, fmt.Errorf("decode fork output: %w", err)
	}
	iterations := make([][]time.Duration, len(fo.Iterations))
	for i, it := range fo.Iterations {
		ds := make([]time.Duration, len(it))
		for j, ns := range it {
			ds[j] = time.Duration(ns)
		}
		iterations[i] = ds
	}
	return iterations, nil
}
