package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/bundle"
)

// BundleCmd creates the `bundle` command: package a project's file,
// rendered chapter audio, and a manifest/TOC summary into a single zip.
func BundleCmd(env *Env) *cobra.Command {
	var (
		projectPath string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Package the project and its rendered audio into a zip",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := requireProject(projectPath)
			if err != nil {
				return err
			}
			reader, err := bundle.Build(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if output == "" {
				output = doc.Title + ".zip"
			}
			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create bundle file: %w", err)
			}
			defer out.Close()
			if _, err := io.Copy(out, reader); err != nil {
				return fmt.Errorf("write bundle file: %w", err)
			}
			fmt.Fprintf(env.Stdout, "bundled -> %s\n", output)
			return nil
		},
	}
	projectFlag(cmd, &projectPath)
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the bundle zip (default: <title>.zip)")
	return cmd
}
