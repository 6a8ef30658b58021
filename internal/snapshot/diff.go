package snapshot

import "sort"

// DeltaKind is a closed enumeration of DeltaItem variants.
type DeltaKind int

const (
	DiskWarning DeltaKind = iota
	DiskCritical
	DiskIncreased
	MemoryHigh
	MemoryIncreased
	NewFailedService
	ServiceRecovered
)

// Category groups DeltaItems for presentation ordering.
type Category int

const (
	CategoryDisk Category = iota
	CategoryMemory
	CategoryServices
	CategoryChanges
)

// DeltaItem is a tagged variant describing one observed change between
// two snapshots. Only the fields relevant to Kind are populated.
type DeltaItem struct {
	Kind     DeltaKind
	Mount    string
	Unit     string
	Prev     int
	Curr     int
	Category Category
}

// severity gives the tie-break rank used in Diff's presentation order:
// higher severity sorts first within a category.
func (d DeltaItem) severity() int {
	switch d.Kind {
	case DiskCritical:
		return 3
	case DiskWarning, MemoryHigh, NewFailedService:
		return 2
	case DiskIncreased, MemoryIncreased:
		return 1
	default:
		return 0
	}
}

func (d DeltaItem) sortKey() int {
	if d.Curr != 0 {
		return d.Curr
	}
	return d.Prev
}

// Diff compares prev and curr per spec §4.8:
//   - disks: critical at >= DiskCritical, warning at >= DiskWarn;
//     increases tracked only when delta >= 5 points and the new value
//     is at least warning-level.
//   - memory: warning at >= MemoryHigh, increases tracked similarly.
//   - services: set-symmetric-difference between failed-service sets.
//
// Presentation order: category (Disk, Memory, Services, Changes), then
// severity desc, then numeric sort key desc.
func Diff(prev, curr *Snapshot, th Thresholds) []DeltaItem {
	var items []DeltaItem

	for mount, curPct := range curr.Disks {
		prevPct, hadPrev := prev.Disks[mount]

		switch {
		case curPct >= th.DiskCritical:
			items = append(items, DeltaItem{Kind: DiskCritical, Mount: mount, Prev: prevPct, Curr: curPct, Category: CategoryDisk})
		case curPct >= th.DiskWarn:
			items = append(items, DeltaItem{Kind: DiskWarning, Mount: mount, Prev: prevPct, Curr: curPct, Category: CategoryDisk})
		}

		if hadPrev && curPct-prevPct >= 5 && curPct >= th.DiskWarn {
			items = append(items, DeltaItem{Kind: DiskIncreased, Mount: mount, Prev: prevPct, Curr: curPct, Category: CategoryDisk})
		}
	}

	currMemPct := curr.Memory.UsedPercent()
	prevMemPct := prev.Memory.UsedPercent()
	if currMemPct >= th.MemoryHigh {
		items = append(items, DeltaItem{Kind: MemoryHigh, Prev: prevMemPct, Curr: currMemPct, Category: CategoryMemory})
	}
	if currMemPct-prevMemPct >= 5 && currMemPct >= th.MemoryHigh {
		items = append(items, DeltaItem{Kind: MemoryIncreased, Prev: prevMemPct, Curr: currMemPct, Category: CategoryMemory})
	}

	prevFailed := toSet(prev.FailedServices)
	currFailed := toSet(curr.FailedServices)

	var newlyFailed, recovered []string
	for u := range currFailed {
		if !prevFailed[u] {
			newlyFailed = append(newlyFailed, u)
		}
	}
	for u := range prevFailed {
		if !currFailed[u] {
			recovered = append(recovered, u)
		}
	}
	sort.Strings(newlyFailed)
	sort.Strings(recovered)

	for _, u := range newlyFailed {
		items = append(items, DeltaItem{Kind: NewFailedService, Unit: u, Category: CategoryServices})
	}
	for _, u := range recovered {
		items = append(items, DeltaItem{Kind: ServiceRecovered, Unit: u, Category: CategoryServices})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		if items[i].severity() != items[j].severity() {
			return items[i].severity() > items[j].severity()
		}
		return items[i].sortKey() > items[j].sortKey()
	})

	return items
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
