package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/apperr"
	"github.com/unalkalkan/audiobooker/internal/language"
	"github.com/unalkalkan/audiobooker/internal/nlp"
	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// CompileCmd creates the `compile` command: run the dialogue compiler
// over every chapter, then the configured NLP refinement passes, and
// save the result.
func CompileCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every chapter's dialogue/speaker attribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			err = project.Compile(doc, func(current, total int, label string) {
				fmt.Fprintf(env.Stdout, "[%d/%d] %s\n", current, total, label)
			})
			if err != nil {
				return err
			}
			if err := runRefiners(cmd.Context(), env, doc); err != nil {
				return err
			}
			if _, err := saveProject(doc); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "compiled %d chapters\n", len(doc.Chapters))
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}

// runRefiners applies the optional post-compile NLP passes the project
// config asks for: speaker resolution of "unknown" attributions, then
// rule-based emotion inference.
func runRefiners(ctx context.Context, env *Env, doc *types.ProjectDocument) error {
	resolverMode := nlp.ResolverMode(doc.Config.BooknlpMode)
	if resolverMode != "" && resolverMode != nlp.ResolverOff {
		cfg, err := env.LoadConfig()
		if err != nil {
			return err
		}
		backend, err := BuildNLPBackend(cfg)
		if err != nil {
			return err
		}
		if llmBackend, ok := backend.(*nlp.LLMBackend); ok {
			for key := range doc.Casting.Characters {
				llmBackend.KnownSpeakers = append(llmBackend.KnownSpeakers, key)
			}
			sort.Strings(llmBackend.KnownSpeakers)
		}
		resolver, err := nlp.NewSpeakerResolver(resolverMode, backend)
		if err != nil {
			return &apperr.BadInput{Message: err.Error()}
		}
		stats, err := resolver.Resolve(ctx, doc.Chapters)
		if err != nil {
			return err
		}
		if stats.BackendUsed {
			fmt.Fprintf(env.Stdout, "speaker resolution: %d resolved, %d unchanged\n",
				stats.SpeakersResolved, stats.SpeakersUnchanged)
			if stats.BackendError != "" {
				fmt.Fprintf(env.Stderr, "speaker resolution backend: %s\n", stats.BackendError)
			}
		}
	}

	emotionMode := nlp.EmotionMode(doc.Config.EmotionMode)
	if emotionMode != "" && emotionMode != nlp.EmotionOff {
		profile, err := language.Get(doc.Config.LanguageCode)
		if err != nil {
			return &apperr.BadInput{Message: err.Error()}
		}
		inferencer, err := nlp.NewEmotionInferencer(emotionMode, doc.Config.EmotionConfidenceThreshold, profile)
		if err != nil {
			return &apperr.BadInput{Message: err.Error()}
		}
		labeled := 0
		for i := range doc.Chapters {
			ch := &doc.Chapters[i]
			labeled += inferencer.ApplyToUtterances(ch.Utterances, ch.RawText)
		}
		if labeled > 0 {
			fmt.Fprintf(env.Stdout, "emotion inference: %d utterances labeled\n", labeled)
		}
	}

	return nil
}
