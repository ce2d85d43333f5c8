package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/health"
	"github.com/unalkalkan/audiobooker/internal/storage"
	"github.com/unalkalkan/audiobooker/internal/synth"
)

// DoctorCmd creates the `doctor` command: run environment/dependency
// health checks (ffmpeg availability, configured TTS reachability,
// storage adapter connectivity) and print a plain-text report, adapted
// from TwelveReader's internal/health Check registry.
func DoctorCmd(env *Env, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment for ffmpeg, configured providers, and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}

			handler := health.NewHandler(version)

			handler.Register("ffmpeg", func(ctx context.Context) (health.Status, error) {
				if synth.NewFFmpegAssembler().Available(ctx) {
					return health.StatusHealthy, nil
				}
				return health.StatusDegraded, fmt.Errorf("not found on PATH; chapter markers will be unavailable")
			})

			handler.Register("tts-provider", func(ctx context.Context) (health.Status, error) {
				synthesizer, err := BuildSynthesizer(cfg)
				if err != nil {
					return health.StatusUnhealthy, err
				}
				if _, ok := synthesizer.(*synth.StubSynthesizer); ok {
					return health.StatusDegraded, fmt.Errorf("no TTS provider configured, using stub synthesizer")
				}
				return health.StatusHealthy, nil
			})

			handler.Register("storage", func(ctx context.Context) (health.Status, error) {
				adapter, err := storage.NewAdapter(cfg.Storage)
				if err != nil {
					return health.StatusUnhealthy, err
				}
				defer adapter.Close()
				if _, err := adapter.Exists(ctx, ".doctor-check"); err != nil {
					return health.StatusUnhealthy, err
				}
				return health.StatusHealthy, nil
			})

			resp := handler.RunChecks(cmd.Context())
			fmt.Fprintln(env.Stdout, resp.Report())
			return nil
		},
	}
	return cmd
}
