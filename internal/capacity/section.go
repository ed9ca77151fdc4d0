package capacity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Batch 班级下的实验分组
type Batch struct {
	Name          string
	Count         int
	PreferredRoom string
}

// Section 院系学生的班级划分
type Section struct {
	ID            Identity
	Name          string
	TotalCount    int
	PreferredRoom string
	Batches       []Batch
}

// BatchName 分组名由班级名与 1 起始的位置推导，例如 "A1"
func BatchName(sectionName string, position int) string {
	return sectionName + strconv.Itoa(position)
}

// SectionLabel 第 i 个（0 起始）班级的默认名称：A…Z, AA, AB…
func SectionLabel(i int) (string, error) {
	if i < 0 {
		return "", fmt.Errorf("%w: section index %d", ErrInvalidArgument, i)
	}
	return excelize.ColumnNumberToName(i + 1)
}

// Clone 深拷贝，所有操作都在副本上进行
func (s Section) Clone() Section {
	c := s
	c.Batches = append([]Batch(nil), s.Batches...)
	return c
}

// Sum 当前各分组人数之和
func (s Section) Sum() int {
	sum := 0
	for _, b := range s.Batches {
		sum += b.Count
	}
	return sum
}

// Validate 检查人数总和与分组命名不变式
func (s Section) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: section name is empty", ErrInvariantViolation)
	}
	if sum := s.Sum(); sum != s.TotalCount {
		return fmt.Errorf("%w: section %s batch sum %d != total %d", ErrInvariantViolation, s.Name, sum, s.TotalCount)
	}
	for i, b := range s.Batches {
		if b.Count < 0 {
			return fmt.Errorf("%w: batch %s has negative count %d", ErrInvariantViolation, b.Name, b.Count)
		}
		if want := BatchName(s.Name, i+1); b.Name != want {
			return fmt.Errorf("%w: batch %q at position %d should be %q", ErrInvariantViolation, b.Name, i+1, want)
		}
	}
	return nil
}

// renumber 按当前班级名与位置重算所有分组名
func (s *Section) renumber() {
	for i := range s.Batches {
		s.Batches[i].Name = BatchName(s.Name, i+1)
	}
}

// NewSection 创建班级并按 batchCount 均分人数
func NewSection(id Identity, name string, total, batchCount int) (Section, error) {
	counts, err := Distribute(total, batchCount)
	if err != nil {
		return Section{}, err
	}
	s := Section{ID: id, Name: name, TotalCount: total, Batches: make([]Batch, batchCount)}
	for i, c := range counts {
		s.Batches[i].Count = c
	}
	s.renumber()
	return s, nil
}

// RedistributeSection 在现有分组上重新均分 newTotal，不改变分组数量、名称与顺序
func RedistributeSection(s Section, newTotal int) (Section, error) {
	out := s.Clone()
	if len(out.Batches) == 0 {
		if newTotal != 0 {
			return s, fmt.Errorf("%w: section %s has no batches to hold %d students", ErrInvalidArgument, s.Name, newTotal)
		}
		out.TotalCount = 0
		return out, nil
	}

	counts, err := Distribute(newTotal, len(out.Batches))
	if err != nil {
		return s, err
	}
	for i, c := range counts {
		out.Batches[i].Count = c
	}
	out.TotalCount = newTotal
	return out, nil
}

// ResizeBatches 增加时在末尾追加分组，减少时从末尾截断，随后重新均分总人数并重算全部分组名
func ResizeBatches(s Section, newBatchCount int) (Section, error) {
	if newBatchCount <= 0 {
		return s, fmt.Errorf("%w: batch count must be positive, got %d", ErrInvalidArgument, newBatchCount)
	}

	out := s.Clone()
	switch current := len(out.Batches); {
	case newBatchCount > current:
		for i := current; i < newBatchCount; i++ {
			out.Batches = append(out.Batches, Batch{})
		}
	case newBatchCount < current:
		out.Batches = out.Batches[:newBatchCount]
	}
	out.renumber()

	return RedistributeSection(out, out.TotalCount)
}

// RenameSection 修改班级名并级联重命名全部分组，人数与顺序不变
func RenameSection(s Section, newName string) (Section, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return s, fmt.Errorf("%w: section name must not be empty", ErrInvalidArgument)
	}
	out := s.Clone()
	out.Name = newName
	out.renumber()
	return out, nil
}

// GenerateSections 批量生成 sectionCount 个班级（A, B, C…），
// 先在班级间分配院系总人数，再在每个班级内部分配到 batchesPerSection 个分组。
func GenerateSections(departmentTotal, sectionCount, batchesPerSection int) ([]Section, error) {
	totals, err := DistributeAcrossSections(departmentTotal, sectionCount)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, sectionCount)
	for i, total := range totals {
		label, err := SectionLabel(i)
		if err != nil {
			return nil, err
		}
		s, err := NewSection(NewPending(), label, total, batchesPerSection)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}
