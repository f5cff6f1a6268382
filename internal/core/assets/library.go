package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Library loads asset definitions from the vault root and caches parsed
// documents by content hash. Loads always re-read and re-hash the file, so a
// changed definition is picked up without any invalidation call; the cache
// only skips the re-parse.
type Library struct {
	root   string
	logger log.Log

	mu    sync.RWMutex
	cache map[string]*Asset
}

// NewLibrary opens a library over root, which must be an existing directory.
func NewLibrary(root string, logger log.Log) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}
	return &Library{
		root:   abs,
		logger: logger.With(log.String("vault", abs)),
		cache:  make(map[string]*Asset),
	}, nil
}

func (l *Library) Root() string { return l.root }

// Clean normalizes a vault-relative path to forward slashes and rejects
// anything that would resolve outside the root.
func (l *Library) Clean(p string) (string, error) {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideVault)
	}
	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, p)
	}
	return cleaned, nil
}

// Load reads, hashes and parses the definition at the vault-relative path.
// The path may omit the extension; .yaml and .yml are tried in that order.
func (l *Library) Load(p string) (*Asset, error) {
	rel, err := l.Clean(p)
	if err != nil {
		return nil, err
	}
	rel, data, err := l.read(rel)
	if err != nil {
		return nil, err
	}

	hash := xxhash.Sum64(data)
	l.mu.RLock()
	cached, ok := l.cache[rel]
	l.mu.RUnlock()
	if ok && cached.Hash == hash {
		return cached, nil
	}

	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", rel, err)
	}
	a := &Asset{Path: rel, Hash: hash, Def: def}

	l.mu.Lock()
	l.cache[rel] = a
	l.mu.Unlock()
	l.logger.Debug("asset loaded", log.String("path", rel), log.Uint64("hash", hash))
	return a, nil
}

func (l *Library) read(rel string) (string, []byte, error) {
	candidates := []string{rel}
	if ext := path.Ext(rel); ext != ".yaml" && ext != ".yml" {
		candidates = append(candidates, rel+".yaml", rel+".yml")
	}
	for _, c := range candidates {
		data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(c)))
		if err == nil {
			return c, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("reading asset %s: %w", c, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrAssetNotFound, rel)
}

// Save writes a definition into the vault at the given relative path,
// creating parent directories, and returns the stored asset.
func (l *Library) Save(p string, def Definition) (*Asset, error) {
	rel, err := l.Clean(p)
	if err != nil {
		return nil, err
	}
	if ext := path.Ext(rel); ext != ".yaml" && ext != ".yml" {
		rel += ".yaml"
	}
	data, err := EncodeDefinition(def)
	if err != nil {
		return nil, err
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing asset %s: %w", rel, err)
	}

	a := &Asset{Path: rel, Hash: xxhash.Sum64(data), Def: def}
	l.mu.Lock()
	l.cache[rel] = a
	l.mu.Unlock()
	l.logger.Info("asset saved", log.String("path", rel), log.String("name", def.Name))
	return a, nil
}

// Instantiate builds the asset's entity subtree under parent (nil meaning top
// level) and applies member values through the registry. Scalar and asset
// values are applied; entity and component references stay unassigned, those
// are wired against the live scene afterwards. A failure tears the partial
// subtree back down.
func (l *Library) Instantiate(a *Asset, sc *scene.Scene, reg *fields.Registry, parent *scene.Entity) (*scene.Entity, error) {
	root, err := sc.NewEntity(a.Def.Name, parent)
	if err != nil {
		return nil, err
	}
	node := NodeDef{Name: a.Def.Name, Components: a.Def.Components, Children: a.Def.Children}
	if err := l.populate(root, node, sc, reg); err != nil {
		_ = sc.Destroy(root)
		return nil, fmt.Errorf("instantiating %s: %w", a.Path, err)
	}
	l.logger.Debug("asset instantiated", log.String("path", a.Path), log.String("entity", root.Path()))
	return root, nil
}

func (l *Library) populate(e *scene.Entity, node NodeDef, sc *scene.Scene, reg *fields.Registry) error {
	if node.Active != nil {
		e.SetActive(*node.Active)
	}
	for _, cd := range node.Components {
		c, err := reg.New(cd.Type)
		if err != nil {
			return err
		}
		if err := sc.Attach(e, c); err != nil {
			return err
		}
		if err := l.applyValues(c, cd, reg); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		ce, err := sc.NewEntity(child.Name, e)
		if err != nil {
			return err
		}
		if err := l.populate(ce, child, sc, reg); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) applyValues(c scene.Component, cd ComponentDef, reg *fields.Registry) error {
	ct, _ := reg.Lookup(cd.Type)
	for name, raw := range cd.Values {
		m, ok := ct.Member(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", fields.ErrMemberNotFound, cd.Type, name)
		}
		switch {
		case m.Type.IsScalar():
			v, err := fields.ParseScalar(m.Type, raw, "")
			if err != nil {
				return fmt.Errorf("%s.%s: %w", cd.Type, name, err)
			}
			if err := reg.Set(c, name, v); err != nil {
				return err
			}
		case m.Type.Kind == fields.KindAsset:
			ref, err := l.Load(raw)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", cd.Type, name, err)
			}
			if err := reg.Set(c, name, ref.Link()); err != nil {
				return err
			}
		default:
			l.logger.Debug("skipping reference value in definition",
				log.String("member", cd.Type+"."+name), log.String("value", raw))
		}
	}
	return nil
}
