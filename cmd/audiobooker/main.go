package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/cli"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes, grouped by failure tier.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitBadInput      = 3
	ExitValidation    = 4
	ExitRenderFailure = 5
	ExitInterrupt     = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.NewEnv()

	rootCmd := &cobra.Command{
		Use:           "audiobooker",
		Short:         "Turn an EPUB or text source into a multi-voice audiobook",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "path to a YAML application config file")

	rootCmd.AddCommand(
		cli.NewProjectCmd(env),
		cli.FromStdinCmd(env),
		cli.LoadCmd(env),
		cli.CastCmd(env),
		cli.CompileCmd(env),
		cli.RenderCmd(env),
		cli.InfoCmd(env),
		cli.VoicesCmd(env),
		cli.ChaptersCmd(env),
		cli.SpeakersCmd(env),
		cli.ReviewExportCmd(env),
		cli.ReviewImportCmd(env),
		cli.PushCmd(env),
		cli.PullCmd(env),
		cli.BundleCmd(env),
		cli.DoctorCmd(env, version),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a surfaced error to an exit-code tier.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}
	if isCobraUsageError(err) {
		return ExitUsage
	}

	var badInput *apperr.BadInput
	var schemaTooNew *apperr.SchemaTooNew
	if errors.As(err, &badInput) || errors.As(err, &schemaTooNew) {
		return ExitBadInput
	}

	var voiceNotFound *apperr.VoiceNotFound
	var compilationError *apperr.CompilationError
	if errors.As(err, &voiceNotFound) || errors.As(err, &compilationError) {
		return ExitValidation
	}

	var synthesizerFailure *apperr.SynthesizerFailure
	var assemblyFailure *apperr.AssemblyFailure
	var cacheCorrupt *apperr.CacheCorrupt
	var renderError *apperr.RenderError
	if errors.As(err, &synthesizerFailure) || errors.As(err, &assemblyFailure) ||
		errors.As(err, &cacheCorrupt) || errors.As(err, &renderError) {
		return ExitRenderFailure
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns are stable Cobra error-message substrings;
// Cobra doesn't expose typed parse errors, so string matching is the
// only reliable way to recognize a usage error.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
