// Package mutation implements the mutation planner (C8): a
// multi-step ChangeRecipe/MutationPlan with risk, preview, verification
// checks, and rollback steps.
package mutation

import "github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"

// ActionKind is a closed enumeration of ChangeAction variants.
type ActionKind int

const (
	EditFile ActionKind = iota
	InstallPackages
	RemovePackages
	EnableService
	DisableService
	SetWallpaper
	RunReadOnly
)

// EditStrategy names how EditFile mutates its target.
type EditStrategy int

const (
	AppendIfMissing EditStrategy = iota
	ReplaceSection
	ReplaceEntire
)

// ChangeAction is one discrete step of a ChangeRecipe.
type ChangeAction struct {
	Kind ActionKind

	// EditFile
	Path           string
	Strategy       EditStrategy
	Lines          []string // AppendIfMissing
	StartMarker    string   // ReplaceSection
	EndMarker      string   // ReplaceSection
	Body           string   // ReplaceSection / ReplaceEntire
	CreateIfMissing bool

	// InstallPackages / RemovePackages
	Packages []string

	// EnableService / DisableService
	ServiceUnit string
	UserScope   bool

	// SetWallpaper
	WallpaperPath string

	// RunReadOnly
	Command string
	Args    []string

	Description      string
	EstimatedImpact  string
	Risk             planner.RiskLevel
	VerificationCmd  string
	VerificationWant string // expected substring in verification output
	RollbackAction   *ChangeAction
}

// protectedPackages may never be removed.
var protectedPackages = map[string]bool{
	"glibc": true, "linux": true, "systemd": true, "pacman": true, "bash": true,
}

// protectedConfigPaths may never be edited, even with user confirmation.
var protectedConfigPaths = map[string]bool{
	"/etc/passwd": true, "/etc/shadow": true, "/etc/sudoers": true,
}

// serviceAllowList maps a unit to the risk of stopping/restarting it.
// Units not present here cannot be manipulated at all.
var serviceAllowList = map[string]planner.RiskLevel{
	"NetworkManager": planner.High,
	"docker":         planner.Low,
	"sshd":           planner.Medium,
	"bluetooth":      planner.Low,
	"cups":           planner.Low,
}

// RiskForPackageInstall implements spec §4.4's package-action risk table.
func RiskForPackageInstall(count int) planner.RiskLevel {
	if count <= 5 {
		return planner.Low
	}
	return planner.Medium
}

// RiskForPackageRemove implements spec §4.4's package-action risk
// table; removing anything in the protected set is always High.
func RiskForPackageRemove(packages []string) (planner.RiskLevel, bool) {
	for _, p := range packages {
		if protectedPackages[p] {
			return planner.High, true
		}
	}
	if len(packages) <= 5 {
		return planner.Medium, false
	}
	return planner.High, false
}

// IsProtectedConfigPath reports whether path may never be edited.
func IsProtectedConfigPath(path string) bool { return protectedConfigPaths[path] }

// RiskForService returns the allow-listed risk for unit, or false if
// the unit is not in the allow-list at all (and so cannot be touched).
func RiskForService(unit string) (planner.RiskLevel, bool) {
	r, ok := serviceAllowList[unit]
	return r, ok
}
