// Package availability 教室周可用性模型：72 个时间槽（周一至周六 × 08:00-19:59）的
// 稠密 0/1 编码、坐标换算、矩阵与文本摘要推导。
//
// 编码约定：0 = 可用，1 = 占用。该包内所有函数均为纯函数，不做任何 I/O。
package availability

import (
	"errors"
	"fmt"
)

const (
	// Days 每周可排课天数（周一至周六）
	Days = 6
	// SlotsPerDay 每天小时槽数量
	SlotsPerDay = 12
	// TotalSlots 总槽位数
	TotalSlots = Days * SlotsPerDay
	// FirstHour 第一个槽位对应的钟点
	FirstHour = 8
	// LastHour 最后一个槽位对应的钟点
	LastHour = FirstHour + SlotsPerDay - 1
)

const (
	// Available 槽位可用
	Available uint8 = 0
	// Blocked 槽位占用
	Blocked uint8 = 1
)

// DayNames 完整星期名称（下标即 day）
var DayNames = [Days]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// dayAbbr 摘要使用的星期缩写
var dayAbbr = [Days]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ErrInvalidGrid 可用性数组长度或取值非法
var ErrInvalidGrid = errors.New("availability: grid must contain exactly 72 values in {0,1}")

// ErrUnknownMode 未知的批量设置模式
var ErrUnknownMode = errors.New("availability: unknown bulk mode")

// RangeError 坐标/下标越界错误，越界时立即失败，从不截断或回绕。
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("availability: %s %d out of range [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// Grid 稠密可用性数组，长度固定为 72，零值即“全部可用”。
type Grid [TotalSlots]uint8

// FromSlice 将持久化层的 []int 转为 Grid，长度必须为 72 且取值只能是 0/1。
// nil 或空切片视为尚未配置，返回全部可用。
func FromSlice(values []int) (Grid, error) {
	var g Grid
	if len(values) == 0 {
		return g, nil
	}
	if len(values) != TotalSlots {
		return g, fmt.Errorf("%w: got %d values", ErrInvalidGrid, len(values))
	}
	for i, v := range values {
		if v != int(Available) && v != int(Blocked) {
			return g, fmt.Errorf("%w: value %d at index %d", ErrInvalidGrid, v, i)
		}
		g[i] = uint8(v)
	}
	return g, nil
}

// Slice 转为持久化/JSON 使用的 []int
func (g Grid) Slice() []int {
	out := make([]int, TotalSlots)
	for i, v := range g {
		out[i] = int(v)
	}
	return out
}

// IsAvailable 判断下标对应槽位是否可用
func (g Grid) IsAvailable(index int) bool {
	return index >= 0 && index < TotalSlots && g[index] == Available
}

// AvailableIndices 转为稀疏表示（升序的可用下标集合），极性与稠密表示相反。
func (g Grid) AvailableIndices() []int {
	out := make([]int, 0, TotalSlots)
	for i, v := range g {
		if v == Available {
			out = append(out, i)
		}
	}
	return out
}

// FromAvailableIndices 由稀疏表示（可用下标集合）构造 Grid：未列出的槽位均为占用。
// 重复下标会被去重并通过第二个返回值报告，越界下标返回 *RangeError。
func FromAvailableIndices(indices []int) (Grid, []int, error) {
	var g Grid
	for i := range g {
		g[i] = Blocked
	}
	seen := make(map[int]bool, len(indices))
	var dupes []int
	for _, idx := range indices {
		if idx < 0 || idx >= TotalSlots {
			return g, nil, &RangeError{Field: "index", Value: idx, Min: 0, Max: TotalSlots - 1}
		}
		if seen[idx] {
			dupes = append(dupes, idx)
			continue
		}
		seen[idx] = true
		g[idx] = Available
	}
	return g, dupes, nil
}

// ── 坐标换算 ──

// IndexOf 将 (day, hour) 转为扁平下标：day*12 + (hour-8)
func IndexOf(day, hour int) (int, error) {
	if day < 0 || day >= Days {
		return 0, &RangeError{Field: "day", Value: day, Min: 0, Max: Days - 1}
	}
	if hour < FirstHour || hour > LastHour {
		return 0, &RangeError{Field: "hour", Value: hour, Min: FirstHour, Max: LastHour}
	}
	return day*SlotsPerDay + (hour - FirstHour), nil
}

// CoordinatesOf 为 IndexOf 的逆运算
func CoordinatesOf(index int) (day, hour int, err error) {
	if index < 0 || index >= TotalSlots {
		return 0, 0, &RangeError{Field: "index", Value: index, Min: 0, Max: TotalSlots - 1}
	}
	return index / SlotsPerDay, index%SlotsPerDay + FirstHour, nil
}

// SlotToHour 将小时槽序号 (0-11) 转为钟点
func SlotToHour(slot int) (int, error) {
	if slot < 0 || slot >= SlotsPerDay {
		return 0, &RangeError{Field: "time_slot", Value: slot, Min: 0, Max: SlotsPerDay - 1}
	}
	return slot + FirstHour, nil
}

// ── 修改（均返回副本） ──

// Mode 批量设置模式
type Mode string

const (
	ModeAllAvailable Mode = "all-available"
	ModeAllBlocked   Mode = "all-blocked"
)

// BulkSet 返回全可用或全占用的新数组
func BulkSet(mode Mode) (Grid, error) {
	var g Grid
	switch mode {
	case ModeAllAvailable:
		return g, nil
	case ModeAllBlocked:
		for i := range g {
			g[i] = Blocked
		}
		return g, nil
	default:
		return g, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Set 设置指定槽位的可用状态
func Set(g Grid, day, hour int, available bool) (Grid, error) {
	idx, err := IndexOf(day, hour)
	if err != nil {
		return g, err
	}
	if available {
		g[idx] = Available
	} else {
		g[idx] = Blocked
	}
	return g, nil
}

// Toggle 翻转指定槽位
func Toggle(g Grid, day, hour int) (Grid, error) {
	idx, err := IndexOf(day, hour)
	if err != nil {
		return g, err
	}
	g[idx] ^= 1
	return g, nil
}
