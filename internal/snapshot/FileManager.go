// Package snapshot writes the in-memory document store to a compressed
// file and reads it back on startup.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"scoutd/internal/docstore"
	"scoutd/internal/providers"
	"scoutd/internal/snapshot/interfaces"

	json "github.com/goccy/go-json"
)

var ErrNotSnapshottable = errors.New("store does not support snapshots")

type FileManager struct {
	snapshotter docstore.Snapshotter
	compressor  interfaces.CompressorInterface
	logger      providers.Logger
}

// NewFileManager accepts any store; only stores implementing
// docstore.Snapshotter can actually be saved or loaded.
func NewFileManager(compressor interfaces.CompressorInterface, store docstore.Store, logger providers.Logger) *FileManager {
	snapshotter, _ := store.(docstore.Snapshotter)
	return &FileManager{
		snapshotter: snapshotter,
		compressor:  compressor,
		logger:      logger,
	}
}

func (f *FileManager) Supported() bool {
	return f.snapshotter != nil
}

func (f *FileManager) SaveToFile(fileName string) error {
	if f.snapshotter == nil {
		return ErrNotSnapshottable
	}

	jsonData, err := json.Marshal(f.snapshotter.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile restores the store from fileName. A missing file is not an
// error: the store simply starts empty.
func (f *FileManager) LoadFromFile(fileName string) error {
	if f.snapshotter == nil {
		return ErrNotSnapshottable
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress snapshot %s: %w", fileName, err)
	}

	var snap docstore.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", fileName, err)
	}
	if snap.Version != docstore.SnapshotVersion {
		return fmt.Errorf("snapshot %s has version %d, expected %d", fileName, snap.Version, docstore.SnapshotVersion)
	}

	f.snapshotter.Restore(&snap)
	documents := 0
	for _, docs := range snap.Collections {
		documents += len(docs)
	}
	f.logger.Infof(providers.TypeApp, "Restored %d documents in %d collections from %s", documents, len(snap.Collections), fileName)
	return nil
}
