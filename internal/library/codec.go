package library

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// snapshotVersion is bumped whenever snapshotFile changes incompatibly.
const snapshotVersion = 1

// zstdMagic is the frame header of a zstd stream.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type snapshotFile struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Clusters    []MomentCluster `json:"clusters"`
}

// DecodeSnapshot reads a JSON snapshot, transparently decompressing zstd.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var file snapshotFile
	if err := json.NewDecoder(src).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if file.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", file.Version)
	}

	log.Debug().
		Int("version", file.Version).
		Int("clusters", len(file.Clusters)).
		Time("generatedAt", file.GeneratedAt).
		Msg("Snapshot decoded")

	return newSnapshotAt(file.Clusters, file.GeneratedAt), nil
}

// EncodeSnapshot writes the snapshot as JSON, zstd-compressed when compress is set.
func EncodeSnapshot(w io.Writer, s *Snapshot, compress bool) error {
	file := snapshotFile{
		Version:     snapshotVersion,
		GeneratedAt: s.GeneratedAt(),
		Clusters:    s.Clusters(),
	}

	if !compress {
		if err := json.NewEncoder(w).Encode(file); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return nil
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(file); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	return nil
}

// ReadSnapshotFile loads a snapshot from disk (.json or .json.zst).
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

// WriteSnapshotFile writes a snapshot to disk, compressing when the path ends in .zst.
func WriteSnapshotFile(path string, s *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := EncodeSnapshot(f, s, strings.HasSuffix(path, ".zst")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
