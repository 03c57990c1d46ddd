// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// ErrNotFound reports that no document exists for a requested name.
var ErrNotFound = errors.New("ontology not found")

// documentFiles are the accepted document filenames, tried in order.
var documentFiles = []string{"ontology.yaml", "ontology.yml", "ontology.json"}

// DirStore is a key-addressable document store backed by a directory
// tree: [root]/[name]/v[version]/ontology.yaml, with [root]/[name]/latest/
// aliasing the most recently put version.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at cfg.Dir.
func NewDirStore(cfg types.StoreConfig) *DirStore {
	return &DirStore{root: cfg.Dir}
}

// Load reads and compiles the named ontology document. An empty version
// resolves to latest. Retrieval honors ctx, so a caller-supplied
// timeout bounds the external call.
func (s *DirStore) Load(ctx context.Context, name, version string) (*Ontology, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Ontology: name, Reason: "retrieval aborted", Err: err}
	}

	dir := "latest"
	if version != "" {
		dir = "v" + version
	}

	var data []byte
	var readErr error
	found := false
	for _, file := range documentFiles {
		b, err := os.ReadFile(filepath.Join(s.root, name, dir, file))
		if err == nil {
			data = b
			found = true
			break
		}
		// A missing filename is the normal fallback path; anything
		// else is a real retrieval failure worth reporting over it.
		if readErr == nil && !os.IsNotExist(err) {
			readErr = err
		}
	}
	if !found {
		if readErr != nil {
			return nil, &LoadError{Ontology: name, Reason: "retrieval failed", Err: readErr}
		}
		return nil, &LoadError{Ontology: name, Reason: "not found", Err: ErrNotFound}
	}

	ont, perr := Parse(data)
	if perr != nil {
		return nil, perr
	}
	return ont, nil
}

// Info summarizes one stored ontology for listings.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	Domain      string `json:"domain" yaml:"domain"`
	Author      string `json:"author" yaml:"author"`
	Constraints int    `json:"constraints" yaml:"constraints"`
}

// List returns a summary of every ontology in the store, by name. An
// entry that fails to parse is reported with its parse problem in the
// description rather than hiding the document.
func (s *DirStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store directory %s: %w", s.root, err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ont, err := s.Load(ctx, entry.Name(), "")
		if err != nil {
			infos = append(infos, Info{
				Name:        entry.Name(),
				Version:     "unknown",
				Description: fmt.Sprintf("unloadable: %v", err),
			})
			continue
		}
		infos = append(infos, Info{
			Name:        ont.Name,
			Version:     ont.Version,
			Description: ont.Description,
			Domain:      ont.Domain,
			Author:      ont.Author,
			Constraints: len(ont.Constraints),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Put validates a document and writes it under its declared name and
// version, updating the latest alias. The document bytes are stored
// as-is so a later Load parses exactly what was validated.
func (s *DirStore) Put(ctx context.Context, data []byte) (*Ontology, error) {
	ont, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, dir := range []string{"v" + ont.Version, "latest"} {
		target := filepath.Join(s.root, ont.Name, dir)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", target, err)
		}
		if err := os.WriteFile(filepath.Join(target, "ontology.yaml"), data, 0o644); err != nil {
			return nil, fmt.Errorf("writing document: %w", err)
		}
	}

	return ont, nil
}
