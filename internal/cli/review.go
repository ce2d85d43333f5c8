package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/project"
)

// ReviewExportCmd creates the `review-export` command: write the
// compiled script in the human-editable review format.
func ReviewExportCmd(env *Env) *cobra.Command {
	var (
		projectPath string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "review-export",
		Short: "Export the compiled script for human review/editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			content, err := project.ExportForReview(doc)
			if err != nil {
				return err
			}
			if _, saveErr := saveProject(doc); saveErr != nil {
				return saveErr
			}

			if output == "" {
				output = strings.TrimSuffix(doc.ProjectPath, filepath.Ext(doc.ProjectPath)) + ".review.txt"
			}
			if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write review file: %w", err)
			}
			fmt.Fprintf(env.Stdout, "exported review script -> %s\n", output)
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the review file (default: <project>.review.txt)")
	return cmd
}

// ReviewImportCmd creates the `review-import` command: apply an edited
// review file back onto the project's utterances.
func ReviewImportCmd(env *Env) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "review-import <file>",
		Short: "Import an edited review file back into the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read review file: %w", err)
			}
			stats := project.ImportReviewed(doc, string(data))
			if _, err := saveProject(doc); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "updated %d chapters, %d utterances, speakers: %s\n",
				stats.ChaptersUpdated, stats.UtterancesImported, strings.Join(stats.SpeakersFound, ", "))
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	return cmd
}
