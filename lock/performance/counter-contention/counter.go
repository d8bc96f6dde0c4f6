package countercontention

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zeromicro/go-zero/core/syncx"
	"golang.org/x/sync/errgroup"
)

// workers 多线程用例固定两个worker
const workers = 2

// Discipline 同步方式，同一用例的两个worker必须使用同一种
type Discipline int

const (
	None     Discipline = iota // 无同步，故意的数据竞争
	Mutex                      // 互斥锁，每次自增加锁/解锁
	Atomic                     // 原子指令
	RWLock                     // 读写锁的写锁，defer 保证释放
	SpinLock                   // go-zero 自旋锁
)

var disciplineNames = [...]string{
	None:     "none",
	Mutex:    "mutex",
	Atomic:   "atomic",
	RWLock:   "rwlock",
	SpinLock: "spinlock",
}

func (d Discipline) String() string {
	if d < 0 || int(d) >= len(disciplineNames) {
		return "unknown"
	}
	return disciplineNames[d]
}

// Counter 两个worker共享的计数器，生命周期仅限于一次用例调用。
// n 为普通计数器，an 为原子计数器，Atomic 用例只修改 an。
type Counter struct {
	n    int64
	an   atomic.Int64
	mu   sync.Mutex
	rw   sync.RWMutex
	spin syncx.SpinLock
}

// Value 读取普通计数器，只能在所有worker结束之后调用
func (c *Counter) Value() int64 { return c.n }

// AtomicValue 读取原子计数器
func (c *Counter) AtomicValue() int64 { return c.an.Load() }

// Result 按同步方式返回被worker实际修改的那个计数器
func (c *Counter) Result(d Discipline) int64 {
	if d == Atomic {
		return c.AtomicValue()
	}
	return c.Value()
}

func (c *Counter) addNoSync(n int64) {
	for i := int64(0); i < n; i++ {
		c.n++
	}
}

func (c *Counter) addMutex(n int64) {
	for i := int64(0); i < n; i++ {
		c.mu.Lock()
		c.n++
		c.mu.Unlock()
	}
}

func (c *Counter) addAtomic(n int64) {
	for i := int64(0); i < n; i++ {
		c.an.Add(1)
	}
}

func (c *Counter) addRWLock(n int64) {
	for i := int64(0); i < n; i++ {
		c.incRWLock()
	}
}

func (c *Counter) incRWLock() {
	c.rw.Lock()
	defer c.rw.Unlock()
	c.n++
}

func (c *Counter) addSpinLock(n int64) {
	for i := int64(0); i < n; i++ {
		c.spin.Lock()
		c.n++
		c.spin.Unlock()
	}
}

func (c *Counter) worker(d Discipline) func(n int64) {
	switch d {
	case Mutex:
		return c.addMutex
	case Atomic:
		return c.addAtomic
	case RWLock:
		return c.addRWLock
	case SpinLock:
		return c.addSpinLock
	default:
		return c.addNoSync
	}
}

// Run 启动两个worker各自增 n 次，等待两者结束（计数为2的闭锁）后返回结果。
// 每个worker独占一个OS线程，且不解除绑定，goroutine退出时线程随之销毁，
// 因此每次调用都使用新建的线程。
func (c *Counter) Run(d Discipline, n int64) int64 {
	add := c.worker(d)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			runtime.LockOSThread()
			add(n)
			return nil
		})
	}
	_ = g.Wait()
	return c.Result(d)
}
