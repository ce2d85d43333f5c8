package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// NewProjectCmd creates the `new` command: build a project document from
// an EPUB or text source file and save it.
func NewProjectCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "new <src>",
		Short: "Create a project from an EPUB or text source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			ctx := cmd.Context()

			doc, err := loadDocFromSource(ctx, src)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(src, filepath.Ext(src)) + ".audiobooker"
			}
			doc.ProjectPath = output

			path, err := saveProject(doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "created %s (%d chapters) -> %s\n", doc.Title, len(doc.Chapters), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the project file (default: <src>.audiobooker)")
	return cmd
}

func loadDocFromSource(ctx context.Context, src string) (*types.ProjectDocument, error) {
	ext := strings.ToLower(filepath.Ext(src))
	switch ext {
	case ".epub":
		return project.FromEpub(ctx, src)
	case ".txt", ".md", ".markdown", "":
		return project.FromText(ctx, src)
	default:
		return nil, ErrUnknownSourceFormat
	}
}

// FromStdinCmd creates the `from-stdin` command: build a project from raw
// text piped on stdin with a caller-supplied title.
func FromStdinCmd(env *Env) *cobra.Command {
	var (
		output string
		title  string
		author string
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "from-stdin",
		Short: "Create a project from text read on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			doc, err := project.FromString(string(data), title, author, lang)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(doc.Title, filepath.Ext(doc.Title)) + ".audiobooker"
			}
			doc.ProjectPath = output

			path, err := saveProject(doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "created %s (%d chapters) -> %s\n", doc.Title, len(doc.Chapters), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the project file")
	cmd.Flags().StringVar(&title, "title", "Untitled", "project title")
	cmd.Flags().StringVar(&author, "author", "", "project author")
	cmd.Flags().StringVar(&lang, "lang", "en", "language profile code")
	return cmd
}
