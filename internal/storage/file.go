package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/mkoven/pathmc/internal/paths"
)

const (
	metaFile  = "meta.json"
	tagsFile  = "tags.json"
	stepsFile = "steps.jsonl.zst"
)

// RunMeta identifies one stored run.
type RunMeta struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FileStore is a run directory: run metadata, a tag map, and an
// append-only zstd-compressed JSON-lines step log. Steps are flushed
// per append so a killed run loses at most the in-flight record.
type FileStore struct {
	dir      string
	meta     RunMeta
	tags     map[string][]byte
	steps    []*paths.Step
	file     *os.File
	enc      *zstd.Encoder
	readOnly bool
}

// CreateFileStore makes a new run directory and opens it for writing.
func CreateFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &FileStore{
		dir:  dir,
		meta: RunMeta{RunID: uuid.New().String(), CreatedAt: time.Now()},
		tags: make(map[string][]byte),
	}
	if err := writeJSON(filepath.Join(dir, metaFile), s.meta); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, tagsFile), s.tags); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, stepsFile))
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.file = f
	s.enc = enc
	return s, nil
}

// OpenFileStore reads an existing run directory. The store is
// read-only: appends fail.
func OpenFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir, tags: make(map[string][]byte), readOnly: true}

	if err := readJSON(filepath.Join(dir, metaFile), &s.meta); err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	if err := readJSON(filepath.Join(dir, tagsFile), &s.tags); err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}

	f, err := os.Open(filepath.Join(dir, stepsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	for scanner.Scan() {
		step, err := decodeStep(scanner.Bytes())
		if err != nil {
			return nil, fmt.Errorf("store %s step %d: %w", dir, len(s.steps), err)
		}
		s.steps = append(s.steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Meta() RunMeta { return s.meta }

func (s *FileStore) AppendStep(step *paths.Step) error {
	if s.readOnly {
		return fmt.Errorf("store %s opened read-only", s.dir)
	}
	line, err := encodeStep(step)
	if err != nil {
		return err
	}
	if _, err := s.enc.Write(append(line, '\n')); err != nil {
		return err
	}
	if err := s.enc.Flush(); err != nil {
		return err
	}
	s.steps = append(s.steps, step)
	return nil
}

func (s *FileStore) Steps() ([]*paths.Step, error) {
	out := make([]*paths.Step, len(s.steps))
	copy(out, s.steps)
	return out, nil
}

func (s *FileStore) StepAt(i int) (*paths.Step, error) {
	if i < 0 || i >= len(s.steps) {
		return nil, fmt.Errorf("step index %d out of range [0,%d)", i, len(s.steps))
	}
	return s.steps[i], nil
}

func (s *FileStore) Len() int { return len(s.steps) }

func (s *FileStore) SetTag(name string, data []byte) error {
	if s.readOnly {
		return fmt.Errorf("store %s opened read-only", s.dir)
	}
	s.tags[name] = append([]byte(nil), data...)
	return writeJSON(filepath.Join(s.dir, tagsFile), s.tags)
}

func (s *FileStore) Tag(name string) ([]byte, error) {
	data, ok := s.tags[name]
	if !ok {
		return nil, fmt.Errorf("no tag %q in store %s", name, s.dir)
	}
	return data, nil
}

func (s *FileStore) TagNames() []string {
	names := make([]string, 0, len(s.tags))
	for name := range s.tags {
		names = append(names, name)
	}
	return names
}

func (s *FileStore) Close() error {
	if s.readOnly {
		return nil
	}
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
