package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/chat-bridge/pkg/bridge"
	"github.com/Protocol-Lattice/chat-bridge/pkg/intent"
	"github.com/Protocol-Lattice/chat-bridge/pkg/logging"
	"github.com/Protocol-Lattice/chat-bridge/pkg/router"
	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func newInspectCommand(flags *cliFlags, in io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show how a request would be classified and routed",
		Long: `inspect reads the same JSON request as the root command and prints the
detected intent, the file analyses and the routing plan. It never contacts
the assistant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd, map[string]any{"offline": true})
			if err != nil {
				return err
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req bridge.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}

			logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
			res := intent.Classifier{WordBoundary: cfg.Intent.WordBoundary}.ForMessage(req.Message)
			analyses := upload.Inspector{Logger: logger}.Inspect(req.Files)
			plan := router.Route(req.Files)

			printInspection(cmd.OutOrStdout(), res, analyses, plan)
			return nil
		},
	}
}

func printInspection(w io.Writer, res intent.Result, analyses []upload.Analysis, plan router.Plan) {
	fmt.Fprintf(w, "%s %s %s\n", bold("Intent:"), cyan(res.Intent), gray(fmt.Sprintf("(confidence %.2f)", res.Confidence)))
	if len(res.Entities) > 0 {
		fmt.Fprintf(w, "%s %s\n", bold("Entities:"), strings.Join(res.Entities, ", "))
	}

	fmt.Fprintf(w, "%s %d\n", bold("Files:"), len(analyses))
	for _, a := range analyses {
		fmt.Fprintf(w, "  %s %s %s\n", statusMark(a.Status), a.Name, gray(a.Type))
		fmt.Fprintf(w, "    %s\n", gray(a.Analysis))
	}

	fmt.Fprintf(w, "%s %s\n", bold("Strategy:"), green(plan.Strategy.String()))
	if note := plan.UnsupportedNote(); note != "" {
		fmt.Fprintf(w, "%s\n", yellow(note))
	}
}

func statusMark(status upload.Status) string {
	mark := "[" + string(status) + "]"
	switch status {
	case upload.StatusReady:
		return green(mark)
	case upload.StatusPending:
		return yellow(mark)
	default:
		return red(mark)
	}
}
