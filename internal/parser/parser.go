// Package parser implements C1's dispatch from a probe's raw stdout to
// a typed ParsedProbeData value, keyed by the command that produced
// it. Every parse failure returns an *atoms.ParseError rather than a
// bare string, matching the spec's closed-error-variant requirement.
//
// This generalizes the per-collector procfs parsers melisai wrote
// directly against /proc and /sys into parsers over subprocess stdout,
// since every Anna probe runs through the sandboxed executor (C4)
// rather than reading kernel interfaces in-process.
package parser

import (
	"sort"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/atoms"
)

// ParsedProbeData is the closed set of structured shapes a probe's
// stdout can be parsed into.
type ParsedProbeData interface {
	isParsedProbeData()
}

// DiskUsage is one df -P row.
type DiskUsage struct {
	Mount       string
	UsedPercent int
	TotalBlocks uint64
	UsedBlocks  uint64
}

// DiskUsageList is every df -P row in one probe's output.
type DiskUsageList struct {
	Disks []DiskUsage
}

func (DiskUsageList) isParsedProbeData() {}

// MemoryInfo is one free -b Mem: row.
type MemoryInfo struct {
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
}

func (MemoryInfo) isParsedProbeData() {}

// ServiceList is the unit names from systemctl --failed.
type ServiceList struct {
	Units []string
}

func (ServiceList) isParsedProbeData() {}

// ServiceState is the single-word result of systemctl is-active.
type ServiceState struct {
	Unit   string
	Active bool
	Raw    string
}

func (ServiceState) isParsedProbeData() {}

// LoadAverage is the three load-average figures from uptime/loadavg.
type LoadAverage struct {
	One, Five, Fifteen string
}

func (LoadAverage) isParsedProbeData() {}

// Parse dispatches on probeID (the command name, e.g. "df", "free",
// "systemctl") to the matching structured parser. Probes whose output
// is already plain text fit for display (uptime, hostname, uname -r,
// and the rest of the template registry's read-only checks) have no
// structured shape: for them Parse returns nil and an
// *atoms.ParseError with reason MissingSection. Parse only covers the
// probes downstream code needs to reason about, not every template.
func Parse(probeID, stdout string) (ParsedProbeData, error) {
	switch probeID {
	case "df":
		return parseDiskUsage(stdout)
	case "free":
		return parseMemoryInfo(stdout)
	case "systemctl --failed":
		return parseServiceList(stdout), nil
	case "systemctl is-active":
		return parseServiceState(stdout), nil
	case "uptime":
		return parseLoadAverage(stdout)
	default:
		return nil, atoms.NewParseError(probeID, atoms.ParseErrorReason{Kind: atoms.MissingSection, Detail: "no structured parser for " + probeID}, stdout)
	}
}

func parseDiskUsage(stdout string) (DiskUsageList, error) {
	var out []DiskUsage
	lines := splitNonEmptyLines(stdout)
	for i, line := range lines {
		if i == 0 {
			continue // header row
		}
		fields := fieldsOf(line)
		if len(fields) < 6 {
			continue
		}
		pct, _, ok := atoms.ParsePercent(fields[4])
		if !ok {
			continue
		}
		total, _ := parseUintField(fields[1])
		used, _ := parseUintField(fields[2])
		out = append(out, DiskUsage{
			Mount:       fields[5],
			UsedPercent: int(pct),
			TotalBlocks: total,
			UsedBlocks:  used,
		})
	}
	if out == nil {
		return DiskUsageList{}, atoms.NewParseError("df", atoms.ParseErrorReason{Kind: atoms.MissingSection, Detail: "no disk rows"}, stdout)
	}
	return DiskUsageList{Disks: out}, nil
}

func parseMemoryInfo(stdout string) (MemoryInfo, error) {
	for _, line := range splitNonEmptyLines(stdout) {
		fields := fieldsOf(line)
		if len(fields) < 3 || fields[0] != "Mem:" {
			continue
		}
		total, err := parseUintField(fields[1])
		if err != nil {
			continue
		}
		used, err := parseUintField(fields[2])
		if err != nil {
			continue
		}
		var free uint64
		if total > used {
			free = total - used
		}
		return MemoryInfo{TotalBytes: total, UsedBytes: used, FreeBytes: free}, nil
	}
	return MemoryInfo{}, atoms.NewParseError("free", atoms.ParseErrorReason{Kind: atoms.MissingSection, Detail: "Mem: row"}, stdout)
}

func parseServiceList(stdout string) ServiceList {
	var units []string
	for _, line := range splitNonEmptyLines(stdout) {
		fields := fieldsOf(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == "UNIT" || name == "0" || strings.HasPrefix(name, "0 loaded") {
			continue
		}
		units = append(units, atoms.NormalizeServiceName(name))
	}
	sort.Strings(units)
	return ServiceList{Units: units}
}

func parseServiceState(stdout string) ServiceState {
	raw := strings.TrimSpace(stdout)
	return ServiceState{Active: raw == "active", Raw: raw}
}

func parseLoadAverage(stdout string) (LoadAverage, error) {
	idx := strings.Index(stdout, "load average:")
	if idx == -1 {
		return LoadAverage{}, atoms.NewParseError("uptime", atoms.ParseErrorReason{Kind: atoms.MissingSection, Detail: "load average:"}, stdout)
	}
	rest := stdout[idx+len("load average:"):]
	parts := strings.Split(rest, ",")
	if len(parts) < 3 {
		return LoadAverage{}, atoms.NewParseError("uptime", atoms.ParseErrorReason{Kind: atoms.MalformedRow}, stdout)
	}
	return LoadAverage{
		One:     strings.TrimSpace(parts[0]),
		Five:    strings.TrimSpace(parts[1]),
		Fifteen: strings.TrimSpace(parts[2]),
	}, nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	return out
}

func fieldsOf(line string) []string {
	var out []string
	var cur []byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func parseUintField(s string) (uint64, error) {
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, atoms.ParseErrorReason{Kind: atoms.InvalidNumber, Detail: s}
		}
		n = n*10 + uint64(c-'0')
	}
	return n, nil
}
