package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/audiobooker/internal/project"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// projectFlag registers the --project/-p flag shared by every command
// that operates on an existing project file.
func projectFlag(cmd *cobra.Command, dest *string) {
	cmd.Flags().StringVarP(dest, "project", "p", "", "path to the .audiobooker project file")
}

// requireProject loads the project at path, returning ErrProjectFlagRequired
// if path is empty.
func requireProject(path string) (*types.ProjectDocument, error) {
	if path == "" {
		return nil, ErrProjectFlagRequired
	}
	doc, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	doc.ProjectPath = path
	return doc, nil
}

// saveProject persists doc back to its project path and reports the
// resolved path.
func saveProject(doc *types.ProjectDocument) (string, error) {
	path, err := project.Save(doc, doc.ProjectPath)
	if err != nil {
		return "", fmt.Errorf("save project: %w", err)
	}
	return path, nil
}
