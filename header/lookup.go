package header

import (
	"fmt"
	"sort"

	"github.com/availproject/avail-light-go/share"
)

// AppDataIndex marks the first data cell owned by an application.
type AppDataIndex struct {
	AppID uint32 `json:"app_id"`
	Start uint32 `json:"start"`
}

// AppLookup maps data cells to applications. Cells are indexed in row-major order over the data
// half of the matrix. An application owns the cells from its Start up to the Start of the next
// entry, the last one owning everything up to Size. Cells at Size and above are tail padding.
type AppLookup struct {
	Size  uint32         `json:"size"`
	Index []AppDataIndex `json:"index"`
}

// Range returns the half-open range of cell indexes owned by the application.
func (l AppLookup) Range(appID uint32) (start, end uint32, ok bool) {
	i := sort.Search(len(l.Index), func(i int) bool {
		return l.Index[i].AppID >= appID
	})
	if i == len(l.Index) || l.Index[i].AppID != appID {
		return 0, 0, false
	}
	start, end = l.Index[i].Start, l.Size
	if i+1 < len(l.Index) {
		end = l.Index[i+1].Start
	}
	return start, end, start < end
}

func (l AppLookup) owner(idx uint32) (uint32, bool) {
	if idx >= l.Size || len(l.Index) == 0 {
		return 0, false
	}
	// last entry starting at or before idx
	i := sort.Search(len(l.Index), func(i int) bool {
		return l.Index[i].Start > idx
	}) - 1
	if i < 0 {
		return 0, false
	}
	return l.Index[i].AppID, true
}

func (l AppLookup) validate(capacity int) error {
	if int64(l.Size) > int64(capacity) {
		return fmt.Errorf("lookup size %d exceeds data capacity %d", l.Size, capacity)
	}
	if len(l.Index) == 0 {
		if l.Size != 0 {
			return fmt.Errorf("lookup of size %d has no entries", l.Size)
		}
		return nil
	}
	if l.Index[0].Start != 0 {
		return fmt.Errorf("first application starts at %d", l.Index[0].Start)
	}
	for i, idx := range l.Index {
		if idx.AppID > share.MaxAppID {
			return fmt.Errorf("reserved application id %d", idx.AppID)
		}
		if idx.Start >= l.Size {
			return fmt.Errorf("application %d starts beyond lookup size", idx.AppID)
		}
		if i == 0 {
			continue
		}
		prev := l.Index[i-1]
		if idx.AppID <= prev.AppID || idx.Start <= prev.Start {
			return fmt.Errorf("lookup entries of applications %d and %d are out of order", prev.AppID, idx.AppID)
		}
	}
	return nil
}
