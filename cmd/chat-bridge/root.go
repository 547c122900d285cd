package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/chat-bridge/pkg/agent"
	"github.com/Protocol-Lattice/chat-bridge/pkg/bridge"
	"github.com/Protocol-Lattice/chat-bridge/pkg/config"
	"github.com/Protocol-Lattice/chat-bridge/pkg/intent"
	"github.com/Protocol-Lattice/chat-bridge/pkg/logging"
	"github.com/Protocol-Lattice/chat-bridge/pkg/models"
	"github.com/Protocol-Lattice/chat-bridge/pkg/upload"
)

type cliFlags struct {
	configFile string
	envFile    string
	logLevel   string
	offline    bool
}

// overrides returns config overrides for the flags the user actually set.
func (f *cliFlags) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	if cmd.Flags().Changed("log-level") {
		out["log.level"] = f.logLevel
	}
	if cmd.Flags().Changed("offline") {
		out["offline"] = f.offline
	}
	return out
}

func (f *cliFlags) load(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	overrides := f.overrides(cmd)
	for k, v := range extra {
		overrides[k] = v
	}
	return config.Load(config.LoadOptions{
		ConfigFile: f.configFile,
		EnvFile:    f.envFile,
		Overrides:  overrides,
	})
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "chat-bridge",
		Short: "Answer one chat widget request read as JSON from stdin",
		Long: `chat-bridge reads a single JSON request from stdin, classifies it, inspects
any attached files, asks the configured assistant for a reply and writes a
single JSON response to stdout. Diagnostics go to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd.Context(), flags, cmd, in, out, errOut)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Path to a dotenv file; ignored when missing")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Diagnostic log level (debug, info, warn, error)")
	pf.BoolVar(&flags.offline, "offline", false, "Reply with canned per-intent answers instead of calling the assistant")

	root.AddCommand(newInspectCommand(flags, in))
	return root
}

func runBridge(ctx context.Context, flags *cliFlags, cmd *cobra.Command, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := flags.load(cmd, nil)
	if err != nil {
		fmt.Fprintf(errOut, "configuration error: %v\n", err)
		code := bridge.WriteError(out, err, time.Now())
		return &ExitCodeError{Code: code, Err: err}
	}

	requestID := uuid.NewString()
	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errOut,
	}).With("request_id", requestID)

	ctx, cancel := context.WithTimeout(ctx, cfg.Agent.Timeout)
	defer cancel()

	proc := &bridge.Processor{
		Classifier: intent.Classifier{WordBoundary: cfg.Intent.WordBoundary},
		Inspector:  upload.Inspector{Logger: logger},
		Logger:     logger,
		RequestID:  requestID,
	}

	if cfg.Offline {
		logger.Info("offline mode, assistant disabled")
	} else {
		svc, err := models.NewOpenAIService(models.OpenAIConfig{
			Endpoint:     cfg.Agent.Endpoint,
			APIKey:       cfg.Agent.APIKey,
			AssistantID:  cfg.Agent.ID,
			PollInterval: cfg.Agent.PollInterval,
		})
		if err != nil {
			logger.Error("create assistant client", "error", err)
			code := bridge.WriteError(out, err, time.Now())
			return &ExitCodeError{Code: code, Err: err}
		}
		proc.Agent = agent.NewManager(svc, logger)
	}

	if code := proc.Process(ctx, in, out); code != 0 {
		return &ExitCodeError{Code: code, Err: fmt.Errorf("request failed with exit code %d", code)}
	}
	return nil
}
