// Package bundle implements the `audiobooker bundle` export (SPEC_FULL.md
// §2.3): packaging a project's file, its rendered chapter WAVs, and a
// manifest/TOC summary into a single zip. Adapted from TwelveReader's
// internal/packaging/service.go (Service.PackageBook, which already
// builds a manifest.json + toc.json + sharded payload zip for a Book),
// repointed at ProjectDocument/Chapter instead of Book/Segment.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/unalkalkan/audiobooker/internal/cache"
	"github.com/unalkalkan/audiobooker/internal/render"
	"github.com/unalkalkan/audiobooker/pkg/types"
)

// Manifest is the bundle's top-level summary file.
type Manifest struct {
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	Chapters        int       `json:"chapters"`
	TotalDuration   float64   `json:"total_duration_seconds"`
	AssembledOutput string    `json:"assembled_output,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Version         string    `json:"version"`
}

// TOC is the bundle's chapter-level table of contents.
type TOC struct {
	Chapters []TOCChapter `json:"chapters"`
}

// TOCChapter is one chapter's entry in the TOC, carrying its running
// start offset and the bundle-relative path of its audio, if rendered.
type TOCChapter struct {
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	AudioPath string  `json:"audio_path,omitempty"`
	StartTime float64 `json:"start_time_seconds"`
	Duration  float64 `json:"duration_seconds"`
}

// Build packages doc into a zip: manifest.json, toc.json, project.json
// (the full project document), and every chapter's rendered WAV under
// chapters/, sharded 100 per directory to match the teacher's shard
// convention. Missing chapter audio is simply omitted from the zip; the
// TOC still lists the chapter with a zero duration so readers can see
// what wasn't rendered yet.
func Build(ctx context.Context, doc *types.ProjectDocument) (io.Reader, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	manifest := generateManifest(doc)
	if err := addJSONFile(zipWriter, "manifest.json", manifest); err != nil {
		return nil, fmt.Errorf("add manifest: %w", err)
	}

	toc := generateTOC(doc)
	if err := addJSONFile(zipWriter, "toc.json", toc); err != nil {
		return nil, fmt.Errorf("add toc: %w", err)
	}

	if err := addJSONFile(zipWriter, "project.json", doc); err != nil {
		return nil, fmt.Errorf("add project document: %w", err)
	}

	cacheRoot := cache.Root(render.ProjectDir(doc))
	for i := range doc.Chapters {
		ch := &doc.Chapters[i]
		wavPath := ch.AudioPath
		if wavPath == "" {
			wavPath = cache.ChapterWavPath(cacheRoot, ch.Index)
		}

		file, err := os.Open(wavPath)
		if err != nil {
			continue
		}

		shardDir := fmt.Sprintf("chapters/%03d", i/100)
		zipPath := path.Join(shardDir, fmt.Sprintf("chapter_%04d.wav", ch.Index))
		if err := addFileFromReader(zipWriter, zipPath, file); err != nil {
			file.Close()
			return nil, fmt.Errorf("add chapter %d audio: %w", ch.Index, err)
		}
		file.Close()
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}

func generateManifest(doc *types.ProjectDocument) Manifest {
	var total float64
	for _, ch := range doc.Chapters {
		total += ch.DurationSeconds
	}
	return Manifest{
		Title:           doc.Title,
		Author:          doc.Author,
		Chapters:        len(doc.Chapters),
		TotalDuration:   total,
		AssembledOutput: doc.OutputPath,
		CreatedAt:       time.Now().UTC(),
		Version:         "1.0",
	}
}

func generateTOC(doc *types.ProjectDocument) TOC {
	toc := TOC{Chapters: make([]TOCChapter, 0, len(doc.Chapters))}
	running := 0.0
	for i := range doc.Chapters {
		ch := &doc.Chapters[i]
		audioPath := ""
		if ch.AudioPath != "" {
			audioPath = path.Join(fmt.Sprintf("chapters/%03d", i/100), fmt.Sprintf("chapter_%04d.wav", ch.Index))
		}
		toc.Chapters = append(toc.Chapters, TOCChapter{
			Index:     ch.Index,
			Title:     ch.Title,
			AudioPath: audioPath,
			StartTime: running,
			Duration:  ch.DurationSeconds,
		})
		running += ch.DurationSeconds
	}
	return toc
}

func addJSONFile(zipWriter *zip.Writer, name string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	writer, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	_, err = writer.Write(jsonData)
	return err
}

func addFileFromReader(zipWriter *zip.Writer, name string, reader io.Reader) error {
	writer, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	_, err = io.Copy(writer, reader)
	return err
}
