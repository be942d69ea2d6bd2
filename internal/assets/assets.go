// Package assets resolves mesh sources and builds cloth instances from them.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/pkg/formats"
)

// GridPrefix marks a generated grid source such as "grid:20x20".
const GridPrefix = "grid:"

var (
	ErrMeshNotFound      = errors.New("mesh not found")
	ErrInvalidGridSource = errors.New("invalid grid source")
)

// LoadedMesh is a mesh resolved from a source string.
type LoadedMesh struct {
	Name string
	Mesh cloth.Mesh

	// TopRow lists the exact top-row indices of generated grids; nil for files.
	TopRow []int32
}

// Manager resolves mesh sources against a list of search paths.
type Manager struct {
	dirs  []string
	cache *Cache
	log   *zap.Logger
	mu    sync.RWMutex
}

// NewManager creates a new asset manager. A nil logger discards output.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// AddSearchPath adds a directory to search for relative mesh paths.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchPath(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// Load reads a file, trying the path as given and then each search path.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	candidates := []string{path}
	if !filepath.IsAbs(path) {
		m.mu.RLock()
		for i := len(m.dirs) - 1; i >= 0; i-- {
			candidates = append(candidates, filepath.Join(m.dirs[i], path))
		}
		m.mu.RUnlock()
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			m.log.Debug("loaded asset", zap.String("path", candidate), zap.Int("bytes", len(data)))
			m.cache.Set(path, data)
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", candidate, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, path)
}

// LoadMesh resolves source into a mesh. Sources of the form grid:RxC are
// generated with the given spacing; anything else is read as an OBJ file.
func (m *Manager) LoadMesh(source string, spacing float32) (*LoadedMesh, error) {
	if rest, ok := strings.CutPrefix(source, GridPrefix); ok {
		rows, cols, err := ParseGridSize(rest)
		if err != nil {
			return nil, err
		}
		mesh, top, err := cloth.NewGrid(rows, cols, spacing)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", source, err)
		}
		return &LoadedMesh{Name: source, Mesh: mesh, TopRow: top}, nil
	}

	data, err := m.Load(source)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	mesh := cloth.Mesh{
		Positions: obj.Positions,
		Triangles: make([]cloth.Triangle, len(obj.Faces)),
	}
	for i, f := range obj.Faces {
		mesh.Triangles[i] = cloth.Triangle(f)
	}
	return &LoadedMesh{Name: filepath.Base(source), Mesh: mesh}, nil
}

// ParseGridSize parses "RxC" into row and column counts.
func ParseGridSize(s string) (rows, cols int, err error) {
	r, c, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, want RxC", ErrInvalidGridSource, s)
	}
	rows, rerr := strconv.Atoi(r)
	cols, cerr := strconv.Atoi(c)
	if rerr != nil || cerr != nil || rows < 2 || cols < 2 {
		return 0, 0, fmt.Errorf("%w: %q, want at least 2x2", ErrInvalidGridSource, s)
	}
	return rows, cols, nil
}

// PinMask selects pinned vertices for a loaded mesh according to mc.
func PinMask(lm *LoadedMesh, mc config.MeshConfig) ([]bool, error) {
	n := len(lm.Mesh.Positions)
	switch mc.Pin {
	case config.PinNone:
		return make([]bool, n), nil
	case config.PinIndices:
		return cloth.PinIndices(n, mc.PinIndices)
	case config.PinTopRow, "":
		if lm.TopRow != nil {
			return cloth.PinIndices(n, lm.TopRow)
		}
		return cloth.PinTopRow(lm.Mesh.Positions, mc.PinTolerance), nil
	default:
		return nil, fmt.Errorf("unknown pin mode %q", mc.Pin)
	}
}

// BuildCloth loads the configured mesh, applies its pins and builds a cloth.
func (m *Manager) BuildCloth(cfg *config.Config, log *zap.Logger) (*cloth.Cloth, *LoadedMesh, error) {
	m.mu.Lock()
	for _, dir := range cfg.Mesh.SearchPaths {
		if !slices.Contains(m.dirs, dir) {
			m.dirs = append(m.dirs, dir)
		}
	}
	m.mu.Unlock()

	lm, err := m.LoadMesh(cfg.Mesh.Source, cfg.Mesh.GridSpacing)
	if err != nil {
		return nil, nil, err
	}

	opts, err := cfg.Simulation.ClothOptions()
	if err != nil {
		return nil, nil, err
	}
	opts.Pinned, err = PinMask(lm, cfg.Mesh)
	if err != nil {
		return nil, nil, fmt.Errorf("pinning %s: %w", lm.Name, err)
	}
	opts.Logger = log

	c, err := cloth.New(lm.Mesh, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("building cloth from %s: %w", lm.Name, err)
	}
	return c, lm, nil
}

// Close drops cached file data.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
