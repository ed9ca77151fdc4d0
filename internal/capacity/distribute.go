// Package capacity 负责把人数在班级（section）与实验分组（batch）之间做均匀分配，
// 余数优先分给靠前的分区，并在改名、增减分组、重新分配后保持人数总和与分组命名不变式。
package capacity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 分区数非正或人数为负
	ErrInvalidArgument = errors.New("capacity: invalid argument")
	// ErrInvariantViolation 人数总和或分组命名不一致，属于程序缺陷
	ErrInvariantViolation = errors.New("capacity: invariant violation")
)

// Distribute 将 total 均分为 n 份：前 total%n 份各多 1。
// 结果之和恒等于 total，且最大值与最小值之差不超过 1。
func Distribute(total, n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: partition count must be positive, got %d", ErrInvalidArgument, n)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: total must be non-negative, got %d", ErrInvalidArgument, total)
	}

	base, remainder := total/n, total%n
	out := make([]int, n)
	for i := range out {
		out[i] = base
		if i < remainder {
			out[i]++
		}
	}
	return out, nil
}

// DistributeAcrossSections 院系级分配，与 Distribute 同一算法
func DistributeAcrossSections(departmentTotal, sectionCount int) ([]int, error) {
	return Distribute(departmentTotal, sectionCount)
}
