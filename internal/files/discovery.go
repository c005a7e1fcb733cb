package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"psacli/internal/config"
	"psacli/internal/spectral"
)

// RawTrace represents one discovered raw trace export, with the identity
// derived from its place in the acquisition tree at discovery time.
type RawTrace struct {
	Animal   string
	Session  string
	Path     string
	Workbook bool // true for .xlsx exports that need conversion first
}

// WindowArtifact represents one windowed CSV belonging to a
// (animal, state, session, chunk) key.
type WindowArtifact struct {
	Identity spectral.Identity
	Path     string
}

// Discovery provides artifact discovery over the pipeline directory contract.
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a new discovery instance.
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// FindRawTraces walks the raw data directory for trace exports. The expected
// layout is <raw>/<animal>/<session>/Traces_cFFT.csv (or .xlsx); the animal
// and session names are captured here, once, and attached to every artifact
// derived from the file.
func (d *Discovery) FindRawTraces() ([]RawTrace, error) {
	root := d.paths.RawDir

	var traces []RawTrace
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		name := strings.ToLower(info.Name())
		if !strings.HasSuffix(name, "_cfft.csv") && !strings.HasSuffix(name, "_cfft.xlsx") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return fmt.Errorf("unexpected raw trace location %s: want <animal>/<session>/<file>", rel)
		}

		traces = append(traces, RawTrace{
			Animal:   parts[len(parts)-3],
			Session:  parts[len(parts)-2],
			Path:     path,
			Workbook: strings.HasSuffix(name, ".xlsx"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk raw data directory: %w", err)
	}

	sort.Slice(traces, func(i, j int) bool {
		if traces[i].Animal != traces[j].Animal {
			return traces[i].Animal < traces[j].Animal
		}
		return traces[i].Session < traces[j].Session
	})

	return traces, nil
}

// Animals returns the distinct animal names of the given traces, sorted.
func Animals(traces []RawTrace) []string {
	seen := make(map[string]bool)
	var animals []string
	for _, tr := range traces {
		if !seen[tr.Animal] {
			seen[tr.Animal] = true
			animals = append(animals, tr.Animal)
		}
	}
	sort.Strings(animals)
	return animals
}

// FindWindowArtifacts locates every session's windowed artifact for one
// (animal, state, chunk) key. Aggregate outputs living in the same directory
// (chunk_NN_raw.csv and friends) are excluded.
func (d *Discovery) FindWindowArtifacts(animal string, state spectral.SleepState, chunk int) ([]WindowArtifact, error) {
	pattern := d.paths.WindowPattern(animal, string(state), chunk)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var artifacts []WindowArtifact
	for _, match := range matches {
		base := filepath.Base(match)
		if strings.HasPrefix(base, "chunk_") {
			continue
		}
		session, ok := sessionFromWindowName(base, chunk)
		if !ok {
			continue
		}
		artifacts = append(artifacts, WindowArtifact{
			Identity: spectral.Identity{
				Animal:  animal,
				State:   state,
				Session: session,
				Type:    spectral.ClassifySession(session),
				Chunk:   chunk,
			},
			Path: match,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Identity.Session < artifacts[j].Identity.Session
	})

	return artifacts, nil
}

// MaxChunkIndex returns the highest chunk index present among the windowed
// artifacts of one (animal, state), or -1 when none exist.
func (d *Discovery) MaxChunkIndex(animal string, state spectral.SleepState) (int, error) {
	dir := d.paths.ChunkedDir(animal, string(state))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return -1, nil
		}
		return -1, fmt.Errorf("read chunked directory %s: %w", dir, err)
	}

	maxChunk := -1
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "chunk_") {
			continue
		}
		if idx, ok := chunkIndexFromName(entry.Name()); ok && idx > maxChunk {
			maxChunk = idx
		}
	}
	return maxChunk, nil
}

// sessionFromWindowName splits "<session>_<NN>.csv" back into the session
// label, verifying the trailing index matches the requested chunk.
func sessionFromWindowName(name string, chunk int) (string, bool) {
	stem := strings.TrimSuffix(name, ".csv")
	suffix := fmt.Sprintf("_%02d", chunk)
	if !strings.HasSuffix(stem, suffix) {
		return "", false
	}
	session := strings.TrimSuffix(stem, suffix)
	if session == "" {
		return "", false
	}
	return session, true
}

// chunkIndexFromName parses the trailing _NN chunk index of a windowed
// artifact name.
func chunkIndexFromName(name string) (int, bool) {
	stem := strings.TrimSuffix(name, ".csv")
	pos := strings.LastIndex(stem, "_")
	if pos < 0 || pos == len(stem)-1 {
		return 0, false
	}
	idx, err := strconv.Atoi(stem[pos+1:])
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
