package countercontention

import (
	"runtime"
	"testing"
)

/*
用较小的自增次数验证各用例的结果。

执行命令:

	go test -run '^Test' -count=1 -v .
	go test -race -run '^Test' -count=1 .

无同步用例存在故意的数据竞争，带 -race 时相关测试会跳过。
*/

const smallN = 1000

func TestIncSingleThread(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := IncSingleThread(smallN + 1); got != smallN+1 {
			t.Fatalf("run %d: IncSingleThread = %d, want %d", i, got, smallN+1)
		}
	}
}

// TestSynchronizedCasesAreExact 加锁或原子操作的用例每次都必须得到 2n
func TestSynchronizedCasesAreExact(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int64) int64
	}{
		{"mutex", IncTwoThreadMutex},
		{"atomic", IncTwoThreadAtomic},
		{"rwlock", IncTwoThreadRWLock},
		{"spinlock", IncTwoThreadSpinLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				if got := tt.fn(smallN); got != 2*smallN {
					t.Fatalf("run %d: got %d, want %d", i, got, 2*smallN)
				}
			}
		})
	}
}

func TestAtomicLeavesPlainCounterUntouched(t *testing.T) {
	c := new(Counter)
	if got := c.Run(Atomic, smallN); got != 2*smallN {
		t.Fatalf("Run(Atomic) = %d, want %d", got, 2*smallN)
	}
	if c.Value() != 0 {
		t.Errorf("plain counter = %d, want 0", c.Value())
	}
	if c.AtomicValue() != 2*smallN {
		t.Errorf("atomic counter = %d, want %d", c.AtomicValue(), 2*smallN)
	}
}

func TestNoSyncNeverExceedsTotal(t *testing.T) {
	if raceEnabled {
		t.Skip("跳过：无同步用例会触发 data race")
	}
	for i := 0; i < 100; i++ {
		got := IncTwoThreadNoSync(smallN)
		if got > 2*smallN {
			t.Fatalf("run %d: IncTwoThreadNoSync = %d, want <= %d", i, got, 2*smallN)
		}
	}
}

// TestNoSyncLosesUpdates 在真正并行的环境下，100次中至少有一次丢失更新。
// 1000 次自增往往在另一个线程启动前就已结束，这里放大到一百万次。
func TestNoSyncLosesUpdates(t *testing.T) {
	if raceEnabled {
		t.Skip("跳过：无同步用例会触发 data race")
	}
	if testing.Short() {
		t.Skip("跳过：-short")
	}
	if runtime.GOMAXPROCS(0) < 2 || runtime.NumCPU() < 2 {
		t.Skip("跳过：需要至少两个CPU才能观察到竞争")
	}

	const n = 1_000_000
	for i := 0; i < 100; i++ {
		if got := IncTwoThreadNoSync(n); got < 2*n {
			t.Logf("run %d: counter = %d, lost %d updates", i, got, 2*n-got)
			return
		}
	}
	t.Fatalf("no lost update observed in 100 runs of %d increments per worker", n)
}

func TestCaseRun(t *testing.T) {
	it := Iterations{SingleThread: smallN + 1, Worker: smallN}
	for _, c := range Cases() {
		if c == TwoThreadNoSync && raceEnabled {
			continue
		}
		t.Run(c.String(), func(t *testing.T) {
			got := c.Run(it)
			want := int64(2 * smallN)
			if c == SingleThread {
				want = smallN + 1
			}
			if c == TwoThreadNoSync {
				if got > want {
					t.Fatalf("Run = %d, want <= %d", got, want)
				}
				return
			}
			if got != want {
				t.Fatalf("Run = %d, want %d", got, want)
			}
		})
	}
}

func TestParseCase(t *testing.T) {
	tests := []struct {
		input   string
		want    Case
		wantErr bool
	}{
		{"single-thread", SingleThread, false},
		{"two-thread-no-sync", TwoThreadNoSync, false},
		{" Two-Thread-Mutex ", TwoThreadMutex, false},
		{"two-thread-atomic", TwoThreadAtomic, false},
		{"two-thread-rwlock", TwoThreadRWLock, false},
		{"two-thread-spinlock", TwoThreadSpinLock, false},
		{"synchronized", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCase(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCase(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCase(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCaseDefaults(t *testing.T) {
	var enabled []Case
	for _, c := range Cases() {
		if c.EnabledByDefault() {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) != 1 || enabled[0] != TwoThreadRWLock {
		t.Fatalf("enabled by default = %v, want [%v]", enabled, TwoThreadRWLock)
	}
	if Case(42).EnabledByDefault() {
		t.Error("Case(42) should not be enabled")
	}
	if got := Case(42).String(); got != "Case(42)" {
		t.Errorf("Case(42).String() = %q", got)
	}
}

func TestCaseDiscipline(t *testing.T) {
	tests := []struct {
		c    Case
		want Discipline
	}{
		{SingleThread, None},
		{TwoThreadNoSync, None},
		{TwoThreadMutex, Mutex},
		{TwoThreadAtomic, Atomic},
		{TwoThreadRWLock, RWLock},
		{TwoThreadSpinLock, SpinLock},
	}
	for _, tt := range tests {
		if got := tt.c.Discipline(); got != tt.want {
			t.Errorf("%v.Discipline() = %v, want %v", tt.c, got, tt.want)
		}
	}
	if got := Discipline(99).String(); got != "unknown" {
		t.Errorf("Discipline(99).String() = %q, want unknown", got)
	}
}

func TestDefaultIterations(t *testing.T) {
	it := DefaultIterations()
	if it.SingleThread != 500_000_001 || it.Worker != 250_000_001 {
		t.Fatalf("DefaultIterations() = %+v", it)
	}
}
