package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoom struct {
	name     string
	grid     Grid
	raw      []int
	capacity int
	lab      bool
	block    string
}

// raw 非空时模拟从存储读取的原始数据
func (r fakeRoom) AvailabilityGrid() (Grid, error) {
	if r.raw != nil {
		return FromSlice(r.raw)
	}
	return r.grid, nil
}
func (r fakeRoom) SeatCapacity() int { return r.capacity }
func (r fakeRoom) Lab() bool         { return r.lab }
func (r fakeRoom) BlockID() string   { return r.block }

func names(rooms []fakeRoom) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.name
	}
	return out
}

func TestFilterByAvailability(t *testing.T) {
	busy, err := Set(Grid{}, 2, 14, false)
	require.NoError(t, err)

	rooms := []fakeRoom{
		{name: "LH-101", capacity: 60, block: "blk-a"},
		{name: "LH-102", grid: busy, capacity: 80, block: "blk-a"},
		{name: "LAB-1", capacity: 30, lab: true, block: "blk-b"},
		{name: "LH-201", capacity: 120, block: "blk-b"},
	}

	got, _, err := FilterByAvailability(rooms, 2, 14, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-101", "LAB-1", "LH-201"}, names(got))

	minCap := 50
	got, _, err = FilterByAvailability(rooms, 2, 14, Filter{MinCapacity: &minCap})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-101", "LH-201"}, names(got))

	isLab := true
	got, _, err = FilterByAvailability(rooms, 2, 14, Filter{IsLab: &isLab})
	require.NoError(t, err)
	assert.Equal(t, []string{"LAB-1"}, names(got))

	block := "blk-b"
	isLab = false
	got, _, err = FilterByAvailability(rooms, 2, 14, Filter{IsLab: &isLab, AcademicBlockID: &block})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-201"}, names(got))

	// 其它时间 LH-102 可用
	got, _, err = FilterByAvailability(rooms, 2, 15, Filter{MinCapacity: &minCap})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-101", "LH-102", "LH-201"}, names(got))
}

func TestFilterByAvailability_InvalidSlot(t *testing.T) {
	_, _, err := FilterByAvailability([]fakeRoom{}, 6, 8, Filter{})
	assert.Error(t, err)
}

func TestFilterByAvailability_SkipsCorruptGrid(t *testing.T) {
	corrupt := make([]int, TotalSlots)
	for i := range corrupt {
		corrupt[i] = int(Blocked)
	}
	corrupt[3] = 2

	rooms := []fakeRoom{
		{name: "LH-101", capacity: 60},
		{name: "LH-666", raw: corrupt, capacity: 60},
		{name: "LH-667", raw: []int{0, 1}, capacity: 60},
	}

	got, invalid, err := FilterByAvailability(rooms, 2, 14, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-101"}, names(got))
	assert.Equal(t, []string{"LH-666", "LH-667"}, names(invalid))
}

func TestSlotToHour(t *testing.T) {
	h, err := SlotToHour(6)
	require.NoError(t, err)
	assert.Equal(t, 14, h)

	_, err = SlotToHour(12)
	assert.Error(t, err)
}
