package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/project"
)

// LoadCmd creates the `load` command: validate that a project file parses
// and print a one-line summary, the read-only counterpart to `new`.
func LoadCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <proj>",
		Short: "Load and validate a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := project.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "loaded %q: %d chapters, schema v%d\n", doc.Title, len(doc.Chapters), doc.SchemaVersion)
			return nil
		},
	}
	return cmd
}

// InfoCmd creates the `info` command: print a project's lifecycle summary.
func InfoCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show project status: chapters, casting, compile/render state",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			info, err := project.GetInfo(doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "title:            %s\n", info.Title)
			if info.Author != "" {
				fmt.Fprintf(env.Stdout, "author:           %s\n", info.Author)
			}
			fmt.Fprintf(env.Stdout, "source:           %s\n", info.Source)
			fmt.Fprintf(env.Stdout, "chapters:         %d\n", info.Chapters)
			fmt.Fprintf(env.Stdout, "total words:      %d\n", info.TotalWords)
			fmt.Fprintf(env.Stdout, "est. duration:    %.1f min\n", info.EstimatedDurationMinutes)
			fmt.Fprintf(env.Stdout, "characters cast:  %d\n", info.CharactersCast)
			fmt.Fprintf(env.Stdout, "uncast speakers:  %d\n", len(info.UncastSpeakers))
			fmt.Fprintf(env.Stdout, "compiled:         %v\n", info.Compiled)
			fmt.Fprintf(env.Stdout, "rendered:         %v\n", info.Rendered)
			if info.Output != "" {
				fmt.Fprintf(env.Stdout, "output:           %s\n", info.Output)
			}
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}

// ChaptersCmd creates the `chapters` command: list chapters with their
// compile/render state.
func ChaptersCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "chapters",
		Short: "List chapters and their compile/render state",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			for i := range doc.Chapters {
				ch := &doc.Chapters[i]
				fmt.Fprintf(env.Stdout, "%4d  %-40s compiled=%-5v rendered=%-5v\n",
					ch.Index, ch.Title, ch.IsCompiled(), ch.IsRendered())
			}
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}

// SpeakersCmd creates the `speakers` command: list detected speakers and
// flag which ones remain uncast.
func SpeakersCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "List detected speakers and which remain uncast",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			uncast, err := project.GetUncastSpeakers(doc)
			if err != nil {
				return err
			}
			uncastSet := make(map[string]bool, len(uncast))
			for _, s := range uncast {
				uncastSet[s] = true
			}
			for _, speaker := range project.GetDetectedSpeakers(doc) {
				status := "cast"
				if uncastSet[speaker] {
					status = "uncast"
				}
				fmt.Fprintf(env.Stdout, "%-30s %s\n", speaker, status)
			}
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}

// VoicesCmd creates the `voices` command: list the voice registry's
// catalog, live from the configured TTS backend when one is set up.
func VoicesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return err
			}
			for _, v := range BuildVoiceRegistry(cmd.Context(), cfg).List() {
				fmt.Fprintf(env.Stdout, "%-14s %-8s %-10s %s\n", v.ID, v.Gender, v.Accent, v.Description)
			}
			return nil
		},
	}
	return cmd
}
