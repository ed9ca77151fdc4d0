package availability

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// FullyAvailableText 全部槽位可用时的摘要
	FullyAvailableText = "Available all week (Mon-Sat, 8 AM-8 PM)"
	// NoAvailabilityText 无任何可用槽位时的摘要
	NoAvailabilityText = "No availability"

	daySeparator = " | "
)

// TimeSlot 网格中的单个小时格
type TimeSlot struct {
	Hour              int  `json:"hour"`
	AvailabilityIndex int  `json:"availability_index"`
	IsAvailable       bool `json:"is_available"`
}

// DayAvailability 某一天的 12 个小时格
type DayAvailability struct {
	Day     int        `json:"day"`
	DayName string     `json:"day_name"`
	Slots   []TimeSlot `json:"slots"`
}

// ToMatrix 将扁平数组展开为 6×12 网格（Grid 为值类型，不会修改调用方数据）
func ToMatrix(g Grid) []DayAvailability {
	days := make([]DayAvailability, Days)
	for d := 0; d < Days; d++ {
		slots := make([]TimeSlot, SlotsPerDay)
		for s := 0; s < SlotsPerDay; s++ {
			idx := d*SlotsPerDay + s
			slots[s] = TimeSlot{
				Hour:              FirstHour + s,
				AvailabilityIndex: idx,
				IsAvailable:       g[idx] == Available,
			}
		}
		days[d] = DayAvailability{Day: d, DayName: DayNames[d], Slots: slots}
	}
	return days
}

// Counts 统计可用与占用槽位数
func Counts(g Grid) (available, blocked int) {
	for _, v := range g {
		if v == Available {
			available++
		}
	}
	return available, TotalSlots - available
}

// Summarize 生成紧凑的可读摘要，例如 "Mon: 8 AM-11 AM, 2 PM | Wed: 9 AM"
func Summarize(g Grid) string {
	s, _, _ := SummarizeIndices(g.AvailableIndices())
	return s
}

// SummarizeIndices 基于稀疏下标集合生成摘要。
// 输入可以乱序；重复下标去重后继续，并通过第二个返回值交给调用方记录告警。
func SummarizeIndices(indices []int) (string, []int, error) {
	seen := make(map[int]bool, len(indices))
	unique := make([]int, 0, len(indices))
	var dupes []int
	for _, idx := range indices {
		if idx < 0 || idx >= TotalSlots {
			return "", nil, &RangeError{Field: "index", Value: idx, Min: 0, Max: TotalSlots - 1}
		}
		if seen[idx] {
			dupes = append(dupes, idx)
			continue
		}
		seen[idx] = true
		unique = append(unique, idx)
	}

	switch len(unique) {
	case TotalSlots:
		return FullyAvailableText, dupes, nil
	case 0:
		return NoAvailabilityText, dupes, nil
	}

	sort.Ints(unique)

	hoursByDay := make([][]int, Days)
	for _, idx := range unique {
		day, hour, _ := CoordinatesOf(idx)
		hoursByDay[day] = append(hoursByDay[day], hour)
	}

	parts := make([]string, 0, Days)
	for day, hours := range hoursByDay {
		if len(hours) == 0 {
			continue
		}
		ranges := mergeHours(hours)
		rendered := make([]string, len(ranges))
		for i, r := range ranges {
			rendered[i] = r.String()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", dayAbbr[day], strings.Join(rendered, ", ")))
	}
	return strings.Join(parts, daySeparator), dupes, nil
}

// hourRange 闭区间 [start, end]，单位为钟点
type hourRange struct {
	start int
	end   int
}

func (r hourRange) String() string {
	if r.start == r.end {
		return FormatHour(r.start)
	}
	return FormatHour(r.start) + "-" + FormatHour(r.end)
}

// mergeHours 合并升序且无重复的钟点为最大连续区间
func mergeHours(hours []int) []hourRange {
	ranges := []hourRange{{start: hours[0], end: hours[0]}}
	for _, h := range hours[1:] {
		last := &ranges[len(ranges)-1]
		if h == last.end+1 {
			last.end = h
			continue
		}
		ranges = append(ranges, hourRange{start: h, end: h})
	}
	return ranges
}

// FormatHour 将 24 小时制转为 "8 AM" / "12 PM" / "2 PM"
func FormatHour(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}
