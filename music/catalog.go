package music

import (
	"fmt"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

// Catalog maps track names to the bundles that define them, so that a
// manager can begin a track that the loaded bundle does not contain.
type Catalog struct {
	bundles []string
	tracks  []string
	index   map[string]string
}

// NewCatalog loads every bundle of loader once and records its tracks. When
// two bundles define a track of the same name, the first bundle listed
// wins.
func NewCatalog(loader mng.BundleLoader) (*Catalog, error) {
	names, err := loader.Bundles()
	if err != nil {
		return nil, fmt.Errorf("could not list bundles: %w", err)
	}
	c := &Catalog{index: map[string]string{}}
	for _, name := range names {
		b, err := loader.LoadBundle(name)
		if err != nil {
			return nil, err
		}
		tracks, err := TrackNames(b.Script)
		if err != nil {
			return nil, fmt.Errorf("bundle %v: %w", name, err)
		}
		c.Add(name, tracks...)
	}
	return c, nil
}

// Add records the tracks of a bundle.
func (c *Catalog) Add(bundle string, tracks ...string) {
	if c.index == nil {
		c.index = map[string]string{}
	}
	c.bundles = append(c.bundles, bundle)
	for _, t := range tracks {
		key := script.FoldName(t)
		if _, ok := c.index[key]; ok {
			continue
		}
		c.index[key] = bundle
		c.tracks = append(c.tracks, t)
	}
}

// Bundle returns the bundle that defines track. A nil catalog defines
// nothing.
func (c *Catalog) Bundle(track string) (string, bool) {
	if c == nil {
		return "", false
	}
	b, ok := c.index[script.FoldName(track)]
	return b, ok
}

func (c *Catalog) Bundles() []string { return c.bundles }
func (c *Catalog) Tracks() []string  { return c.tracks }

// TrackNames returns the names of the tracks of a script in order of
// declaration. Only the declarations are checked; the track bodies are not
// compiled.
func TrackNames(src string) ([]string, error) {
	p := &parser{s: newSession(0, &mng.NullDevice{}, DefaultResolution)}
	if err := p.preParse(src); err != nil {
		return nil, err
	}
	ret := make([]string, len(p.s.tracks))
	for i, t := range p.s.tracks {
		ret[i] = t.name
	}
	return ret, nil
}
