package parser

import (
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/atoms"
)

const dfOutput = `Filesystem     1024-blocks      Used Available Capacity Mounted on
/dev/sda1        20971520  16777216   3145728      85% /
/dev/sda2        10485760   1048576   8912896      11% /home
`

func TestParseDiskUsage(t *testing.T) {
	got, err := Parse("df", dfOutput)
	if err != nil {
		t.Fatalf("Parse(df): unexpected error: %v", err)
	}
	list := got.(DiskUsageList)
	if len(list.Disks) != 2 {
		t.Fatalf("Parse(df): got %d rows, want 2", len(list.Disks))
	}
	if list.Disks[0].Mount != "/" || list.Disks[0].UsedPercent != 85 {
		t.Errorf("Parse(df) row 0 = %+v, want mount=/ percent=85", list.Disks[0])
	}
	if list.Disks[1].Mount != "/home" || list.Disks[1].UsedPercent != 11 {
		t.Errorf("Parse(df) row 1 = %+v, want mount=/home percent=11", list.Disks[1])
	}
}

func TestParseDiskUsageEmpty(t *testing.T) {
	_, err := Parse("df", "Filesystem 1024-blocks Used Available Capacity Mounted on\n")
	if err == nil {
		t.Fatal("Parse(df) with only a header: expected error")
	}
	if _, ok := err.(*atoms.ParseError); !ok {
		t.Fatalf("Parse(df) error is not *atoms.ParseError: %v", err)
	}
}

const freeOutput = `              total        used        free      shared  buff/cache   available
Mem:     16777216000  8388608000  4194304000     1048576  3984343040  8000000000
Swap:     2147483648           0  2147483648
`

func TestParseMemoryInfo(t *testing.T) {
	got, err := Parse("free", freeOutput)
	if err != nil {
		t.Fatalf("Parse(free): unexpected error: %v", err)
	}
	mem := got.(MemoryInfo)
	if mem.TotalBytes != 16_777_216_000 {
		t.Errorf("Parse(free) total = %d, want 16777216000", mem.TotalBytes)
	}
	if mem.UsedBytes != 8_388_608_000 {
		t.Errorf("Parse(free) used = %d, want 8388608000", mem.UsedBytes)
	}
	if mem.FreeBytes != mem.TotalBytes-mem.UsedBytes {
		t.Errorf("Parse(free) free = %d, want total-used", mem.FreeBytes)
	}
}

func TestParseMemoryInfoMissingRow(t *testing.T) {
	_, err := Parse("free", "              total        used\nSwap:  0 0\n")
	if err == nil {
		t.Fatal("Parse(free) without Mem: row: expected error")
	}
}

const failedUnitsOutput = `UNIT          LOAD   ACTIVE SUB    DESCRIPTION
sshd.service  loaded failed failed OpenSSH server
foo           loaded failed failed Foo thing

0 loaded units listed.
`

func TestParseServiceList(t *testing.T) {
	got, err := Parse("systemctl --failed", failedUnitsOutput)
	if err != nil {
		t.Fatalf("Parse(systemctl --failed): unexpected error: %v", err)
	}
	list := got.(ServiceList)
	want := []string{"foo.service", "sshd.service"}
	if len(list.Units) != len(want) {
		t.Fatalf("Parse(systemctl --failed) = %v, want %v", list.Units, want)
	}
	for i, u := range want {
		if list.Units[i] != u {
			t.Errorf("Parse(systemctl --failed)[%d] = %q, want %q", i, list.Units[i], u)
		}
	}
}

func TestParseServiceListNoFailures(t *testing.T) {
	got, err := Parse("systemctl --failed", "UNIT LOAD ACTIVE SUB DESCRIPTION\n\n0 loaded units listed.\n")
	if err != nil {
		t.Fatalf("Parse(systemctl --failed): unexpected error: %v", err)
	}
	if len(got.(ServiceList).Units) != 0 {
		t.Errorf("Parse(systemctl --failed) with no failures: got %v, want empty", got.(ServiceList).Units)
	}
}

func TestParseServiceState(t *testing.T) {
	got, err := Parse("systemctl is-active", "active\n")
	if err != nil {
		t.Fatalf("Parse(systemctl is-active): unexpected error: %v", err)
	}
	state := got.(ServiceState)
	if !state.Active {
		t.Errorf("Parse(systemctl is-active) active=%v, want true", state.Active)
	}

	got, err = Parse("systemctl is-active", "inactive\n")
	if err != nil {
		t.Fatalf("Parse(systemctl is-active): unexpected error: %v", err)
	}
	if got.(ServiceState).Active {
		t.Errorf("Parse(systemctl is-active) for inactive unit reported active=true")
	}
}

func TestParseLoadAverage(t *testing.T) {
	got, err := Parse("uptime", " 14:32:01 up 3 days,  2:14,  1 user,  load average: 0.52, 0.61, 0.58\n")
	if err != nil {
		t.Fatalf("Parse(uptime): unexpected error: %v", err)
	}
	la := got.(LoadAverage)
	if la.One != "0.52" || la.Five != "0.61" || la.Fifteen != "0.58" {
		t.Errorf("Parse(uptime) = %+v, want {0.52 0.61 0.58}", la)
	}
}

func TestParseUnknownProbeID(t *testing.T) {
	_, err := Parse("nonexistent-command", "some output")
	if err == nil {
		t.Fatal("Parse(nonexistent-command): expected error")
	}
}
