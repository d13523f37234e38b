package provision

import (
	"os"
	"path/filepath"
)

// RenderedArtifact is one generated file: env file, proxy config, compose
// file or TLS material.
type RenderedArtifact struct {
	Path    string
	Content []byte
	Mode    os.FileMode
}

// WriteArtifact writes atomically: the content goes to a temp file in the
// target directory first and is renamed into place, so an interrupted run
// never leaves a half-written config behind.
func WriteArtifact(a RenderedArtifact) error {
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.Path)+".tmp-*")
	if err != nil {
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(a.Content); err != nil {
		tmp.Close()
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	if err := tmp.Chmod(a.Mode); err != nil {
		tmp.Close()
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	if err := os.Rename(tmpName, a.Path); err != nil {
		return &ArtifactWriteError{Path: a.Path, Err: err}
	}
	return nil
}

// WriteArtifacts writes a batch in order, stopping at the first failure.
func WriteArtifacts(artifacts []RenderedArtifact) error {
	for _, a := range artifacts {
		if err := WriteArtifact(a); err != nil {
			return err
		}
	}
	return nil
}
