package availability

// Resource 带有周可用性的可预约资源（教室、实验室等）
// AvailabilityGrid 在存储数据无法解析为合法网格时返回错误
type Resource interface {
	AvailabilityGrid() (Grid, error)
	SeatCapacity() int
	Lab() bool
	BlockID() string
}

// Filter 可选的附加过滤条件，nil 表示不过滤
type Filter struct {
	MinCapacity     *int
	IsLab           *bool
	AcademicBlockID *string
}

func (f Filter) match(r Resource) bool {
	if f.MinCapacity != nil && r.SeatCapacity() < *f.MinCapacity {
		return false
	}
	if f.IsLab != nil && r.Lab() != *f.IsLab {
		return false
	}
	if f.AcademicBlockID != nil && r.BlockID() != *f.AcademicBlockID {
		return false
	}
	return true
}

// FilterByAvailability 返回在 (day, hour) 可用且满足全部过滤条件的资源，保持输入顺序。
// 网格无法解析的资源不参与匹配，单独放入 invalid 由调用方记录。
func FilterByAvailability[R Resource](resources []R, day, hour int, f Filter) (matched, invalid []R, err error) {
	idx, err := IndexOf(day, hour)
	if err != nil {
		return nil, nil, err
	}

	matched = make([]R, 0, len(resources))
	for _, r := range resources {
		g, gridErr := r.AvailabilityGrid()
		if gridErr != nil {
			invalid = append(invalid, r)
			continue
		}
		if !g.IsAvailable(idx) {
			continue
		}
		if !f.match(r) {
			continue
		}
		matched = append(matched, r)
	}
	return matched, invalid, nil
}
