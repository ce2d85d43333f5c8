package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/internal/voice"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// CastCmd creates the `cast` command: assign a voice to a character, or
// with --suggest, print ranked voice suggestions for one instead.
func CastCmd(env *Env) *cobra.Command {
	var (
		projectPath string
		emotion     string
		description string
		suggest     bool
	)

	cmd := &cobra.Command{
		Use:   "cast <character> [voice]",
		Short: "Assign a voice to a character, or suggest one with --suggest",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			character := args[0]

			if suggest {
				samples := sampleUtterancesFor(doc, character)
				isNarrator := character == doc.Casting.DefaultNarrator
				suggestions := voice.NewSuggester(DefaultVoiceRegistry(), 3).
					SuggestForSpeaker(character, samples, isNarrator, voiceMapping(doc))
				for _, s := range suggestions.Suggestions {
					fmt.Fprintf(env.Stdout, "%-14s score=%.2f  %s\n", s.VoiceID, s.Score, s.Reason)
				}
				if len(args) == 1 {
					return nil
				}
			}

			if len(args) < 2 {
				return fmt.Errorf("a voice ID is required unless only --suggest is requested")
			}
			voiceID := args[1]

			if _, err := project.Cast(doc, character, voiceID, emotion, description); err != nil {
				return err
			}
			if _, err := saveProject(doc); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "cast %q -> %s\n", character, voiceID)
			return nil
		},
	}

	projectFlag(cmd, &projectPath)
	cmd.Flags().StringVar(&emotion, "emotion", "", "default emotion for this character")
	cmd.Flags().StringVar(&description, "description", "", "voice/tone description")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "print ranked voice suggestions instead of/before casting")
	return cmd
}

func voiceMapping(doc *types.ProjectDocument) map[string]string {
	m := make(map[string]string, len(doc.Casting.Characters))
	for key, ch := range doc.Casting.Characters {
		m[key] = ch.VoiceID
	}
	return m
}

func sampleUtterancesFor(doc *types.ProjectDocument, speaker string) []string {
	var samples []string
	for _, ch := range doc.Chapters {
		for _, u := range ch.Utterances {
			if u.Speaker == speaker {
				samples = append(samples, u.Text)
				if len(samples) >= 5 {
					return samples
				}
			}
		}
	}
	return samples
}
