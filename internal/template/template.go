// Package template implements the template registry (C5): a closed
// set of canonical question-to-command mappings with keyword
// predicates and slot-filling. First match wins; order is
// deterministic and part of the registry.
package template

import (
	"strings"
)

// Template is (id, keyword predicate, command, expected keywords).
type Template struct {
	ID   string
	// Keywords is a disjunction of whole-word matches.
	Keywords []string
	// MustNotContain disambiguates overlapping templates (e.g. a disk
	// template only wins if the utterance lacks a memory hint).
	MustNotContain []string
	// Command is the command template; %SLOT% placeholders are
	// substituted by Instantiate.
	Command string
	// ExpectedKeywords describe the output shape; nothing checks them
	// against the command's real output. The template itself needs no
	// further C7 validation.
	ExpectedKeywords []string
	Risk             string // Low | Medium | High, almost always Low for Tier-1 reads
}

// Registry is the ordered, deterministic list of templates. First
// match wins, so order here IS the resolution priority.
var Registry = []Template{
	{
		ID:               "check_memory",
		Keywords:         []string{"ram", "memory"},
		Command:          "free -h",
		ExpectedKeywords: []string{"Mem:"},
		Risk:             "Low",
	},
	{
		ID:               "check_disk",
		Keywords:         []string{"disk", "storage", "space"},
		MustNotContain:   []string{"ram", "memory"},
		Command:          "df -h",
		ExpectedKeywords: []string{"Filesystem"},
		Risk:             "Low",
	},
	{
		ID:               "list_failed_services",
		Keywords:         []string{"failed", "broken"},
		Command:          "systemctl --failed --no-pager",
		ExpectedKeywords: []string{"UNIT", "LOAD"},
		Risk:             "Low",
	},
	{
		ID:               "check_service_status",
		Keywords:         []string{"status", "running"},
		Command:          "systemctl is-active %SERVICE%",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "clean_package_cache",
		Keywords:         []string{"clean", "cache"},
		MustNotContain:   []string{"browser"},
		Command:          "paccache -rk1",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_cpu",
		Keywords:         []string{"cpu", "processor"},
		Command:          "lscpu",
		ExpectedKeywords: []string{"CPU(s):"},
		Risk:             "Low",
	},
	{
		ID:               "check_block_devices",
		Keywords:         []string{"lsblk", "partitions", "drives"},
		Command:          "lsblk",
		ExpectedKeywords: []string{"NAME"},
		Risk:             "Low",
	},
	{
		ID:               "check_boot_time",
		Keywords:         []string{"boot", "startup"},
		Command:          "systemd-analyze",
		ExpectedKeywords: []string{"Startup finished"},
		Risk:             "Low",
	},
	{
		ID:               "check_recent_errors",
		Keywords:         []string{"errors", "journal", "log"},
		Command:          "journalctl -p 3 -b --no-pager",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_network_interfaces",
		Keywords:         []string{"network", "interfaces", "wifi"},
		Command:          "nmcli device status",
		ExpectedKeywords: []string{"DEVICE"},
		Risk:             "Low",
	},
	{
		ID:               "check_installed_package",
		Keywords:         []string{"installed"},
		Command:          "pacman -Qs %PACKAGE%",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_running_processes",
		Keywords:         []string{"processes", "running programs"},
		Command:          "ps aux --sort=-%cpu",
		ExpectedKeywords: []string{"PID"},
		Risk:             "Low",
	},
	{
		ID:               "check_uptime",
		Keywords:         []string{"uptime", "how long"},
		Command:          "uptime -p",
		ExpectedKeywords: []string{"up"},
		Risk:             "Low",
	},
	{
		ID:               "check_kernel_version",
		Keywords:         []string{"kernel"},
		Command:          "uname -r",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_os_release",
		Keywords:         []string{"distro", "distribution", "os version"},
		Command:          "cat /etc/os-release",
		ExpectedKeywords: []string{"NAME"},
		Risk:             "Low",
	},
	{
		ID:               "check_hostname",
		Keywords:         []string{"hostname"},
		Command:          "hostnamectl",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_load_average",
		Keywords:         []string{"load average", "loadavg"},
		Command:          "cat /proc/loadavg",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_swap",
		Keywords:         []string{"swap"},
		Command:          "swapon --show",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_logged_in_users",
		Keywords:         []string{"logged in", "who is logged", "sessions"},
		Command:          "who",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_listening_ports",
		Keywords:         []string{"listening", "open ports", "ports"},
		Command:          "ss -tulpn",
		ExpectedKeywords: []string{"LISTEN"},
		Risk:             "Low",
	},
	{
		ID:               "check_firewall_status",
		Keywords:         []string{"firewall", "ufw", "iptables"},
		Command:          "ufw status verbose",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_default_gateway",
		Keywords:         []string{"gateway", "default route"},
		Command:          "ip route show default",
		ExpectedKeywords: []string{"default"},
		Risk:             "Low",
	},
	{
		ID:               "check_dns_servers",
		Keywords:         []string{"dns", "nameserver"},
		Command:          "resolvectl status",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_docker_containers",
		Keywords:         []string{"docker", "containers"},
		Command:          "docker ps -a",
		ExpectedKeywords: []string{"CONTAINER"},
		Risk:             "Low",
	},
	{
		ID:               "check_systemd_timers",
		Keywords:         []string{"timers", "scheduled"},
		Command:          "systemctl list-timers --no-pager",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_crontab",
		Keywords:         []string{"cron", "crontab"},
		Command:          "crontab -l",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_largest_files",
		Keywords:         []string{"largest files", "biggest files", "big files"},
		Command:          "du -ahx / 2>/dev/null | sort -rh | head -n 20",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_zombie_processes",
		Keywords:         []string{"zombie"},
		Command:          "ps aux | awk '$8==\"Z\"'",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_package_updates",
		Keywords:         []string{"updates available", "upgrades"},
		Command:          "checkupdates",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_last_reboot",
		Keywords:         []string{"last reboot", "restart history"},
		Command:          "last reboot",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_battery",
		Keywords:         []string{"battery"},
		Command:          "upower -i /org/freedesktop/UPower/devices/battery_BAT0",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_gpu",
		Keywords:         []string{"gpu", "graphics card", "video card"},
		Command:          "lspci -k | grep -EA3 'VGA|3D'",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_cpu_temperature",
		Keywords:         []string{"temperature", "temp", "thermal"},
		Command:          "sensors",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_disk_io",
		Keywords:         []string{"disk io", "disk activity", "iostat"},
		Command:          "iostat -xz 1 3",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_mount_points",
		Keywords:         []string{"mounts", "mounted", "mount points"},
		Command:          "findmnt",
		ExpectedKeywords: []string{"TARGET"},
		Risk:             "Low",
	},
	{
		ID:               "check_inode_usage",
		Keywords:         []string{"inode", "inodes"},
		Command:          "df -i",
		ExpectedKeywords: []string{"Inodes"},
		Risk:             "Low",
	},
	{
		ID:               "check_file_descriptor_limit",
		Keywords:         []string{"file descriptor", "ulimit", "open files limit"},
		Command:          "ulimit -n",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_timezone",
		Keywords:         []string{"timezone", "time zone"},
		Command:          "timedatectl",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_locale",
		Keywords:         []string{"locale", "language settings"},
		Command:          "localectl status",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_journal_disk_usage",
		Keywords:         []string{"journal size", "log size", "journal disk usage"},
		Command:          "journalctl --disk-usage",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_env_variable",
		Keywords:         []string{"environment variable", "env var"},
		Command:          "printenv %VARIABLE%",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "check_ssh_sessions",
		Keywords:         []string{"ssh sessions", "ssh connections"},
		Command:          "ss -tnp state established '( dport = :22 or sport = :22 )'",
		ExpectedKeywords: []string{},
		Risk:             "Low",
	},
	{
		ID:               "restart_service",
		Keywords:         []string{"restart"},
		Command:          "systemctl restart %SERVICE%",
		ExpectedKeywords: []string{},
		Risk:             "Medium",
	},
	{
		ID:               "start_service",
		Keywords:         []string{"start service"},
		Command:          "systemctl start %SERVICE%",
		ExpectedKeywords: []string{},
		Risk:             "Medium",
	},
	{
		ID:               "stop_service",
		Keywords:         []string{"stop service"},
		MustNotContain:   []string{"status"},
		Command:          "systemctl stop %SERVICE%",
		ExpectedKeywords: []string{},
		Risk:             "Medium",
	},
}

// Match tokenises the request on non-alphanumeric boundaries and
// evaluates each template's predicate in registry order, first match
// wins. It returns (nil, false) on no match — never an ambiguous
// result, by construction.
func Match(request string) (*Template, bool) {
	tokens := tokenize(request)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			tokenSet[strings.Join(tokens[i:i+n], " ")] = true
		}
	}

	for i := range Registry {
		t := &Registry[i]
		if !anyKeywordPresent(t.Keywords, tokenSet) {
			continue
		}
		if anyKeywordPresent(t.MustNotContain, tokenSet) {
			continue
		}
		return t, true
	}
	return nil, false
}

func anyKeywordPresent(keywords []string, tokenSet map[string]bool) bool {
	for _, k := range keywords {
		if tokenSet[strings.ToLower(k)] {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	var tokens []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = nil
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if isAlnum {
			cur = append(cur, c)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// Instantiate substitutes %SLOT% placeholders in t.Command with values
// drawn from slots (keyed without the surrounding %).
func Instantiate(t *Template, slots map[string]string) string {
	cmd := t.Command
	for k, v := range slots {
		cmd = strings.ReplaceAll(cmd, "%"+strings.ToUpper(k)+"%", v)
	}
	return cmd
}
