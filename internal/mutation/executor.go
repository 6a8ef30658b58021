package mutation

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PackageManager is the one arch-native manager Anna drives directly
// (pacman), plus the AUR helpers it recognizes as equivalent for
// inventory purposes (yay, paru). There is no multi-distro table: the
// mutation executor targets the single distribution this host
// actually runs.
type PackageManager string

const (
	Pacman PackageManager = "pacman"
	Yay    PackageManager = "yay"
	Paru   PackageManager = "paru"
)

// Executor carries out a confirmed MutationPlan's actions in order,
// stopping at the first failure and leaving the plan's partial
// progress recorded in its Steps so Rollback can reverse exactly what
// ran.
type Executor struct {
	pkgManager PackageManager
	dryRun     bool
	log        *zap.SugaredLogger
	runTimeout time.Duration
}

// NewExecutor builds an Executor bound to pkgManager.
func NewExecutor(pkgManager PackageManager, dryRun bool, log *zap.SugaredLogger) *Executor {
	return &Executor{pkgManager: pkgManager, dryRun: dryRun, log: log, runTimeout: 5 * time.Minute}
}

// Execute runs plan's actions in order. It requires plan.State ==
// Confirmed and transitions it to Executing, then VerifiedSuccess (all
// actions executed and every verification check passed) or leaves it
// at Executing with the failing step recorded for the caller to
// decide whether to Rollback.
func (e *Executor) Execute(ctx context.Context, plan *MutationPlan) error {
	if plan.State != Confirmed {
		return fmt.Errorf("mutation: plan %s is not Confirmed (state=%s)", plan.ID, plan.State)
	}
	plan.State = Executing

	for _, action := range plan.Recipe.Actions {
		step := StepResult{Action: action}

		if err := e.runAction(ctx, action); err != nil {
			step.ExecutionError = err.Error()
			plan.Steps = append(plan.Steps, step)
			if e.log != nil {
				e.log.Errorw("mutation: action failed", "plan", plan.ID, "action", action.Description, "error", err)
			}
			return fmt.Errorf("mutation: action %q failed: %w", action.Description, err)
		}
		step.Executed = true

		if action.VerificationCmd != "" {
			out, ok := e.verify(ctx, action)
			step.VerificationRan = true
			step.Verified = ok
			step.VerifyOutput = out
			if !ok {
				plan.Steps = append(plan.Steps, step)
				return fmt.Errorf("mutation: verification failed for action %q: output %q did not contain %q",
					action.Description, out, action.VerificationWant)
			}
		}

		plan.Steps = append(plan.Steps, step)
	}

	plan.State = VerifiedSuccess
	return nil
}

// Rollback reverses plan's executed steps in reverse order, using
// each action's RollbackAction when present, falling back to
// InstalledPackages for package installs whose RollbackAction was not
// explicitly set.
func (e *Executor) Rollback(ctx context.Context, plan *MutationPlan) error {
	var firstErr error
	for i := len(plan.Steps) - 1; i >= 0; i-- {
		step := &plan.Steps[i]
		if !step.Executed {
			continue
		}

		var rollbackAction *ChangeAction
		switch {
		case step.Action.RollbackAction != nil:
			rollbackAction = step.Action.RollbackAction
		case step.Action.Kind == InstallPackages && len(plan.InstalledPackages) > 0:
			rollbackAction = &ChangeAction{Kind: RemovePackages, Packages: plan.InstalledPackages}
		default:
			continue
		}

		if err := e.runAction(ctx, *rollbackAction); err != nil {
			step.RollbackError = err.Error()
			if firstErr == nil {
				firstErr = err
			}
			if e.log != nil {
				e.log.Errorw("mutation: rollback step failed", "plan", plan.ID, "error", err)
			}
			continue
		}
		step.RolledBack = true
	}

	if firstErr != nil {
		return fmt.Errorf("mutation: rollback incomplete: %w", firstErr)
	}
	plan.State = RolledBack
	return nil
}

func (e *Executor) verify(ctx context.Context, action ChangeAction) (string, bool) {
	vctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(vctx, "sh", "-c", action.VerificationCmd)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	_ = cmd.Run()

	text := out.String()
	return text, action.VerificationWant == "" || strings.Contains(text, action.VerificationWant)
}

func (e *Executor) runAction(ctx context.Context, a ChangeAction) error {
	if e.dryRun {
		if e.log != nil {
			e.log.Infow("mutation: dry-run, skipping action", "description", a.Description)
		}
		return nil
	}

	actx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	switch a.Kind {
	case InstallPackages:
		return e.runPackageCmd(actx, "-S", a.Packages)
	case RemovePackages:
		return e.runPackageCmd(actx, "-R", a.Packages)
	case EnableService:
		return e.runSystemctl(actx, "enable", "--now", a.ServiceUnit, a.UserScope)
	case DisableService:
		return e.runSystemctl(actx, "disable", "--now", a.ServiceUnit, a.UserScope)
	case EditFile:
		return applyEdit(a)
	case SetWallpaper:
		return setWallpaper(actx, a.WallpaperPath)
	case RunReadOnly:
		cmd := exec.CommandContext(actx, a.Command, a.Args...)
		return cmd.Run()
	default:
		return fmt.Errorf("mutation: unknown action kind %d", a.Kind)
	}
}

func (e *Executor) runPackageCmd(ctx context.Context, verb string, packages []string) error {
	if len(packages) == 0 {
		return fmt.Errorf("mutation: package action with no packages")
	}

	var args []string
	switch e.pkgManager {
	case Yay, Paru:
		args = append([]string{string(e.pkgManager), verb, "--noconfirm"}, packages...)
	default:
		args = append([]string{"pacman", verb, "--noconfirm"}, packages...)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", strings.Join(args, " "), err, out.String())
	}
	return nil
}

func (e *Executor) runSystemctl(ctx context.Context, verb, flag, unit string, userScope bool) error {
	args := []string{verb, flag, unit}
	if userScope {
		args = append([]string{"--user"}, args...)
	}
	cmd := exec.CommandContext(ctx, "systemctl", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, out.String())
	}
	return nil
}

func setWallpaper(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("wallpaper source %q: %w", path, err)
	}
	cmd := exec.CommandContext(ctx, "gsettings", "set", "org.gnome.desktop.background", "picture-uri", "file://"+path)
	return cmd.Run()
}
