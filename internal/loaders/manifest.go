package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// Manifest lists the sources of a knowledge base build.
//
//	files:
//	  - data/ntu_visa.txt
//	urls:
//	  - https://www.ntu.edu.sg/life-at-ntu/accommodation
//	chunk_size: 500
//	chunk_overlap: 100
//	use_defaults: false
type Manifest struct {
	Files        []string `yaml:"files"`
	URLs         []string `yaml:"urls"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap *int     `yaml:"chunk_overlap"`
	UseDefaults  bool     `yaml:"use_defaults"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: manifest: %v", domain.ErrInvalidInput, err)
	}
	return &m, nil
}

// Apply merges the manifest into a build request. Sources are appended;
// chunking parameters override the request only when set.
func (m *Manifest) Apply(req *domain.BuildRequest) {
	req.Files = append(req.Files, m.Files...)
	req.URLs = append(req.URLs, m.URLs...)
	if m.ChunkSize > 0 {
		req.ChunkSize = m.ChunkSize
	}
	if m.ChunkOverlap != nil {
		req.ChunkOverlap = *m.ChunkOverlap
	}
	req.UseDefaults = req.UseDefaults || m.UseDefaults
}
