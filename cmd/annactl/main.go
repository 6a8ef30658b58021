// annactl — thin CLI client for annad. Every subcommand is a single
// RPC call over the unix socket; annactl holds no domain state of its
// own.
//
// Exit codes:
//
//	0  success
//	1  internal/unexpected error
//	2  invalid usage (bad flags/arguments)
//	3  could not reach annad (socket missing, dial failed, timed out)
//	4  request rejected (validation failure, wrong confirmation phrase)
//	5  daemon overloaded (try again shortly)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/health"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/pipeline"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/profile"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/render"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/rpc"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

const defaultSocketPath = "/run/anna/annad.sock"

const (
	exitOK = iota
	exitInternal
	exitUsage
	exitUnreachable
	exitRejected
	exitOverloaded
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		socketPath string
		asJSON     bool
	)

	rootCmd := &cobra.Command{
		Use:     "annactl",
		Short:   "Talk to annad, Anna's local IT-assistant daemon",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", defaultSocketPath, "annad unix socket path")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a human-readable rendering")

	exitCode := exitOK

	var userProfile *profile.UserProfile
	profilePath := profile.DefaultPath()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "mcp" {
			return nil
		}
		p, err := profile.Load(profilePath)
		if err != nil {
			return nil // a missing/corrupt profile never blocks the CLI
		}
		now := time.Now().Unix()
		info := profile.CalculateInteractionInfo(p.LastSessionAt, now)
		p.RecordSession(now)
		userProfile = p

		if !asJSON {
			username := os.Getenv("USER")
			if username == "" {
				username = "there"
			}
			fmt.Print(render.Greeting(username, info, p))
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if userProfile == nil {
			return nil
		}
		userProfile.RecordTool(cmd.Name())
		return userProfile.Save(profilePath)
	}

	queryCmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask Anna a natural-language question or instruction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(socketPath)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var answer pipeline.Answer
			if err := client.Call(ctx, rpc.MethodQuery, rpc.QueryArgs{Text: strings.Join(args, " ")}, &answer); err != nil {
				exitCode = classifyError(err)
				return err
			}

			if asJSON {
				return render.JSON(os.Stdout, answer)
			}
			fmt.Print(render.Answer(&answer))
			return nil
		},
	}

	var confirmPhrase string
	confirmCmd := &cobra.Command{
		Use:   "confirm <plan-id>",
		Short: "Confirm a pending mutation plan with its exact risk-tiered phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(socketPath)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			var out json.RawMessage
			err := client.Call(ctx, rpc.MethodConfirm, rpc.ConfirmArgs{PlanID: args[0], Phrase: confirmPhrase}, &out)
			if err != nil {
				exitCode = classifyError(err)
				return err
			}
			if asJSON {
				return render.JSON(os.Stdout, out)
			}
			fmt.Println("plan confirmed and executed")
			return nil
		},
	}
	confirmCmd.Flags().StringVar(&confirmPhrase, "phrase", "", "the exact confirmation phrase (see the query output)")
	_ = confirmCmd.MarkFlagRequired("phrase")

	var rollbackPhrase string
	rollbackCmd := &cobra.Command{
		Use:   "rollback <plan-id>",
		Short: "Roll back a previously executed mutation plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(socketPath)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			var out json.RawMessage
			err := client.Call(ctx, rpc.MethodRollback, rpc.RollbackArgs{PlanID: args[0], Phrase: rollbackPhrase}, &out)
			if err != nil {
				exitCode = classifyError(err)
				return err
			}
			if asJSON {
				return render.JSON(os.Stdout, out)
			}
			fmt.Println("plan rolled back")
			return nil
		},
	}
	rollbackCmd.Flags().StringVar(&rollbackPhrase, "phrase", "", `must be "I CONFIRM ROLLBACK"`)
	_ = rollbackCmd.MarkFlagRequired("phrase")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show mutation outcome counters and the episodic XP/level summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(socketPath)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var out json.RawMessage
			if err := client.Call(ctx, rpc.MethodStatus, nil, &out); err != nil {
				exitCode = classifyError(err)
				return err
			}
			return render.JSON(os.Stdout, out)
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Capture a fresh snapshot and print the relevant-only health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(socketPath)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var summary health.Summary
			if err := client.Call(ctx, rpc.MethodHealth, nil, &summary); err != nil {
				exitCode = classifyError(err)
				return err
			}
			if asJSON {
				return render.JSON(os.Stdout, summary)
			}
			fmt.Print(render.Health(summary))
			return nil
		},
	}

	rootCmd.AddCommand(queryCmd, confirmCmd, rollbackCmd, statusCmd, healthCmd, newMCPCmd(&socketPath))

	if err := rootCmd.Execute(); err != nil {
		if exitCode == exitOK {
			exitCode = exitUsage
		}
		return exitCode
	}
	return exitOK
}

// classifyError maps an rpc.Client error onto annactl's documented
// exit codes by inspecting the error code the daemon embedded in its
// response.
func classifyError(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "dial"):
		return exitUnreachable
	case strings.Contains(msg, string(rpc.CodeOverloaded)):
		return exitOverloaded
	case strings.Contains(msg, string(rpc.CodeValidationFailed)), strings.Contains(msg, string(rpc.CodeInvalidRequest)):
		return exitRejected
	default:
		return exitInternal
	}
}
