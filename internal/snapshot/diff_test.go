package snapshot

import "testing"

func TestDiffServiceSymmetricDifference(t *testing.T) {
	prev := &Snapshot{FailedServices: []string{"nginx.service"}, Disks: map[string]int{}}
	curr := &Snapshot{FailedServices: []string{"docker.service"}, Disks: map[string]int{}}

	items := Diff(prev, curr, DefaultThresholds)

	var newFailed, recovered int
	for _, it := range items {
		switch it.Kind {
		case NewFailedService:
			newFailed++
			if it.Unit != "docker.service" {
				t.Errorf("unexpected new-failed unit %q", it.Unit)
			}
		case ServiceRecovered:
			recovered++
			if it.Unit != "nginx.service" {
				t.Errorf("unexpected recovered unit %q", it.Unit)
			}
		}
	}
	if newFailed != 1 || recovered != 1 {
		t.Errorf("newFailed=%d recovered=%d, want 1 and 1", newFailed, recovered)
	}
}

func TestDiffDiskThresholds(t *testing.T) {
	prev := &Snapshot{Disks: map[string]int{"/": 70}}
	curr := &Snapshot{Disks: map[string]int{"/": 92}}

	items := Diff(prev, curr, DefaultThresholds)

	foundCritical, foundIncreased := false, false
	for _, it := range items {
		if it.Kind == DiskCritical && it.Mount == "/" {
			foundCritical = true
		}
		if it.Kind == DiskIncreased && it.Mount == "/" {
			foundIncreased = true
		}
	}
	if !foundCritical {
		t.Error("expected DiskCritical for 92% usage")
	}
	if !foundIncreased {
		t.Error("expected DiskIncreased for 22-point jump into critical range")
	}
}

func TestDiffOrdering(t *testing.T) {
	prev := &Snapshot{Disks: map[string]int{}}
	curr := &Snapshot{
		Disks:          map[string]int{"/": 95, "/home": 82},
		FailedServices: []string{"docker.service"},
	}
	items := Diff(prev, curr, DefaultThresholds)
	if len(items) == 0 {
		t.Fatal("expected items")
	}
	// Disk category items must precede Services category items.
	lastDiskIdx, firstServiceIdx := -1, -1
	for i, it := range items {
		if it.Category == CategoryDisk {
			lastDiskIdx = i
		}
		if it.Category == CategoryServices && firstServiceIdx == -1 {
			firstServiceIdx = i
		}
	}
	if lastDiskIdx == -1 || firstServiceIdx == -1 || lastDiskIdx > firstServiceIdx {
		t.Errorf("expected disk items before service items, got order %+v", items)
	}
}
