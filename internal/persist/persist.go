// Package persist writes and reads index snapshots. A snapshot carries the
// vector index and the metadata sequence in one file so positions cannot
// drift apart across a save/load cycle.
package persist

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Gauravmangate27/novasearch/internal/models"
	"github.com/Gauravmangate27/novasearch/internal/vector"
)

// File layout, little-endian: magic, format version, vector index section
// (see vector.FlatIndex codec), metadata section length (uint32), then the
// metadata sequence as JSON in position order.
var magic = [4]byte{'N', 'V', 'S', 'X'}

const formatVersion uint16 = 1

// Save writes a snapshot of idx and docs to path, creating parent
// directories as needed. docs must be in position order and have exactly one
// entry per indexed vector.
func Save(path string, idx *vector.FlatIndex, docs []*models.Document) error {
	if len(docs) != idx.Size() {
		return fmt.Errorf("snapshot misaligned: %d vectors but %d metadata records", idx.Size(), len(docs))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := idx.EncodeTo(w); err != nil {
		return fmt.Errorf("write vector index: %w", err)
	}
	meta, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(meta))); err != nil {
		return fmt.Errorf("write metadata length: %w", err)
	}
	if _, err := w.Write(meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return w.Flush()
}

// Load reads the snapshot at path, decoding the vector section into idx, and
// returns the metadata sequence in position order.
func Load(path string, idx *vector.FlatIndex) ([]*models.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("not a snapshot file: bad magic %q", gotMagic)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	if err := idx.DecodeFrom(r); err != nil {
		return nil, fmt.Errorf("read vector index: %w", err)
	}
	var metaLen uint32
	if err := binary.Read(r, binary.LittleEndian, &metaLen); err != nil {
		return nil, fmt.Errorf("read metadata length: %w", err)
	}
	meta := make([]byte, metaLen)
	if _, err := io.ReadFull(r, meta); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var docs []*models.Document
	if err := json.Unmarshal(meta, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if len(docs) != idx.Size() {
		return nil, fmt.Errorf("corrupt snapshot: %d vectors but %d metadata records", idx.Size(), len(docs))
	}
	return docs, nil
}
