package sqrtvscos

import (
	"math"
	"math/rand/v2"
)

// Sqrt 平方根基准的状态，sample 在每轮测量前由 Setup 重新生成
type Sqrt struct {
	sample float64
}

// Setup 生成 [0,1) 内新的随机样本
func (s *Sqrt) Setup() {
	s.sample = rand.Float64() //nolint:gosec // 基准测试用
}

// Sample 当前样本
func (s *Sqrt) Sample() float64 { return s.sample }

// Measure 计算样本的主平方根
func (s *Sqrt) Measure() float64 {
	return math.Sqrt(s.sample)
}

// SqrtVsCos 同时计算平方根和余弦，用于对比两者开销，默认不参与测量
func SqrtVsCos(x float64) (sqrt, cos float64) {
	return math.Sqrt(x), math.Cos(x)
}
