package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/archive"
)

// PushCmd creates the `push` command: sync a project's file and render
// cache up to the configured storage adapter.
func PushCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a project's file and render cache to remote storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			adapter, err := BuildStorageAdapter(cfg)
			if err != nil {
				return err
			}
			defer adapter.Close()

			summary, err := archive.Push(cmd.Context(), adapter, doc, doc.ProjectPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "pushed %s, manifest=%q, %d chapter WAVs\n",
				summary.ProjectFileKey, summary.ManifestKey, len(summary.ChapterWavKeys))
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}

// PullCmd creates the `pull` command: sync a project's file and render
// cache down from the configured storage adapter into a local directory.
func PullCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <slug>",
		Short: "Pull a project's file and render cache from remote storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			adapter, err := BuildStorageAdapter(cfg)
			if err != nil {
				return err
			}
			defer adapter.Close()

			if output == "" {
				output = args[0]
			}
			summary, err := archive.Pull(cmd.Context(), adapter, args[0], output)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "pulled project -> %s, manifest=%v, %d chapter WAVs\n",
				summary.ProjectFilePath, summary.ManifestPulled, summary.ChapterWavCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "local directory to pull into (default: <slug>)")
	return cmd
}
