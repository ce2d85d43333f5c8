package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// RenderCmd creates the `render` command: drive the compile->synthesize
// ->assemble pipeline for the whole project, or a single chapter with -c.
func RenderCmd(env *Env) *cobra.Command {
	var (
		projectPath  string
		output       string
		chapter      int
		noResume     bool
		fromChapter  int
		allowPartial bool
		cleanCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the project (or a single chapter with -c) to audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			synthesizer, err := BuildSynthesizer(cfg)
			if err != nil {
				return err
			}

			if cleanCache {
				if err := os.RemoveAll(cache.Root(render.ProjectDir(doc))); err != nil {
					return fmt.Errorf("clean cache: %w", err)
				}
			}

			if cmd.Flags().Changed("chapter") {
				if output == "" {
					output = fmt.Sprintf("%s/chapter_%03d.wav", project.OutputDir(doc), chapter)
				}
				if err := project.RenderChapter(ctx, doc, chapter, output, synthesizer); err != nil {
					return err
				}
				if _, err := saveProject(doc); err != nil {
					return err
				}
				fmt.Fprintf(env.Stdout, "rendered chapter %d -> %s\n", chapter, output)
				return nil
			}

			assembler := BuildAssembler(ctx)
			opts := render.Options{
				Resume:       !noResume,
				AllowPartial: allowPartial,
			}
			if cmd.Flags().Changed("from-chapter") {
				opts.FromChapter = &fromChapter
			}

			summary, renderErr := project.Render(ctx, doc, output, opts, synthesizer, assembler, BuildVoiceRegistry(ctx, cfg),
				func(current, total int, status string) {
					fmt.Fprintf(env.Stdout, "[%d/%d] %s\n", current, total, status)
				})
			if _, saveErr := saveProject(doc); saveErr != nil && renderErr == nil {
				renderErr = saveErr
			}
			if renderErr != nil {
				var re *apperr.RenderError
				if errors.As(renderErr, &re) {
					printFailedChapters(env, re.Summary.FailedChapters)
				}
				return renderErr
			}

			fmt.Fprintf(env.Stdout, "rendered=%d skipped=%d failed=%d total=%d -> %s\n",
				summary.Rendered, summary.SkippedCached, summary.Failed, summary.Total, summary.OutputPath)
			printFailedChapters(env, summary.FailedChapters)
			return nil
		},
	}

	projectFlag(cmd, &projectPath)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <title>.<format>, or the chapter dir when -c is given)")
	cmd.Flags().IntVarP(&chapter, "chapter", "c", 0, "render only this chapter index, bypassing the cache")
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "ignore the cache and resynthesize every chapter")
	cmd.Flags().IntVar(&fromChapter, "from-chapter", 0, "skip chapters before this index without touching their state")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "tolerate per-chapter synthesis failures and assemble from the rest")
	cmd.Flags().BoolVar(&cleanCache, "clean-cache", false, "discard the render cache before rendering")
	return cmd
}

func printFailedChapters(env *Env, failed []types.FailedChapter) {
	for _, f := range failed {
		fmt.Fprintf(env.Stderr, "  chapter %d (%s): %s\n", f.ChapterIndex, f.Title, f.Error)
	}
}
