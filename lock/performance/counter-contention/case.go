package countercontention

import (
	"fmt"
	"strings"
)

const (
	// SingleThreadIterations 单线程用例的自增次数
	SingleThreadIterations int64 = 500_000_001
	// WorkerIterations 多线程用例中每个worker的自增次数
	WorkerIterations int64 = 250_000_001
)

// Iterations 各用例的自增次数，测试中可以调小
type Iterations struct {
	SingleThread int64 `json:",default=500000001"`
	Worker       int64 `json:",default=250000001"`
}

// DefaultIterations 返回完整规模的自增次数
func DefaultIterations() Iterations {
	return Iterations{
		SingleThread: SingleThreadIterations,
		Worker:       WorkerIterations,
	}
}

// Case 计数器竞争用例
type Case int

const (
	SingleThread Case = iota
	TwoThreadNoSync
	TwoThreadMutex
	TwoThreadAtomic
	TwoThreadRWLock
	TwoThreadSpinLock
)

type caseInfo struct {
	name       string
	discipline Discipline
	enabled    bool
}

// 默认只启用读写锁用例，其余用例需要通过配置显式选择
var caseInfos = [...]caseInfo{
	SingleThread:      {name: "single-thread", discipline: None},
	TwoThreadNoSync:   {name: "two-thread-no-sync", discipline: None},
	TwoThreadMutex:    {name: "two-thread-mutex", discipline: Mutex},
	TwoThreadAtomic:   {name: "two-thread-atomic", discipline: Atomic},
	TwoThreadRWLock:   {name: "two-thread-rwlock", discipline: RWLock, enabled: true},
	TwoThreadSpinLock: {name: "two-thread-spinlock", discipline: SpinLock},
}

// Cases 按声明顺序返回全部用例
func Cases() []Case {
	cs := make([]Case, len(caseInfos))
	for i := range caseInfos {
		cs[i] = Case(i)
	}
	return cs
}

// ParseCase 按名称解析用例，大小写不敏感
func ParseCase(name string) (Case, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range caseInfos {
		if info.name == name {
			return Case(i), nil
		}
	}
	return 0, fmt.Errorf("unknown counter case %q", name)
}

func (c Case) valid() bool { return c >= 0 && int(c) < len(caseInfos) }

func (c Case) String() string {
	if !c.valid() {
		return fmt.Sprintf("Case(%d)", int(c))
	}
	return caseInfos[c].name
}

// Discipline 用例使用的同步方式
func (c Case) Discipline() Discipline {
	if !c.valid() {
		return None
	}
	return caseInfos[c].discipline
}

// EnabledByDefault 未显式选择用例时是否运行
func (c Case) EnabledByDefault() bool {
	return c.valid() && caseInfos[c].enabled
}

// Run 以给定的自增次数执行用例，返回最终计数
func (c Case) Run(it Iterations) int64 {
	switch c {
	case SingleThread:
		return IncSingleThread(it.SingleThread)
	case TwoThreadNoSync:
		return IncTwoThreadNoSync(it.Worker)
	case TwoThreadMutex:
		return IncTwoThreadMutex(it.Worker)
	case TwoThreadAtomic:
		return IncTwoThreadAtomic(it.Worker)
	case TwoThreadRWLock:
		return IncTwoThreadRWLock(it.Worker)
	case TwoThreadSpinLock:
		return IncTwoThreadSpinLock(it.Worker)
	default:
		panic(fmt.Sprintf("countercontention: invalid case %d", int(c)))
	}
}

// IncSingleThread 单线程顺序自增 n 次，作为串行基线
func IncSingleThread(n int64) int64 {
	c := new(Counter)
	c.addNoSync(n)
	return c.Value()
}

// IncTwoThreadNoSync 两个worker无同步地自增同一个计数器。
// 存在数据竞争，结果不大于 2n 且每次可能不同，只衡量吞吐不保证正确。
func IncTwoThreadNoSync(n int64) int64 {
	return new(Counter).Run(None, n)
}

// IncTwoThreadMutex 每次自增都加互斥锁，结果恒为 2n
func IncTwoThreadMutex(n int64) int64 {
	return new(Counter).Run(Mutex, n)
}

// IncTwoThreadAtomic 使用原子自增，返回原子计数器的值。
// 普通计数器在此用例中不被读写，保持为0。
func IncTwoThreadAtomic(n int64) int64 {
	return new(Counter).Run(Atomic, n)
}

// IncTwoThreadRWLock 每次自增获取读写锁的写锁，defer 释放
func IncTwoThreadRWLock(n int64) int64 {
	return new(Counter).Run(RWLock, n)
}

// IncTwoThreadSpinLock 每次自增获取自旋锁，与阻塞式互斥锁对照
func IncTwoThreadSpinLock(n int64) int64 {
	return new(Counter).Run(SpinLock, n)
}
