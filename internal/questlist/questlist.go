// Package questlist holds the ship's quest catalog: an immutable-between-
// reloads table of categories, each an ordered list of quests identified by
// numeric menu/item ids (spec.md §3 "Quest list"). Quest content itself —
// the script bytecode behind each id — is out of scope; this package only
// carries the menu structure clients select from.
package questlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Quest is one selectable entry within a category.
type Quest struct {
	ItemID uint32 `yaml:"item_id"`
	Name   string `yaml:"name"`
	Short  string `yaml:"short_description"`
}

// Category groups quests under one menu id, matching the client's
// ship-select-style nested menu shape (constants.MenuIDShipSelect is the
// same kind of id space, one level up).
type Category struct {
	MenuID uint32  `yaml:"menu_id"`
	Name   string  `yaml:"name"`
	Quests []Quest `yaml:"quests"`
}

// List is a reloadable catalog. The zero value is an empty, usable catalog.
// Structurally grounded on config's load-with-defaults pattern: Reload
// replaces the whole table atomically so readers never see a partial
// rewrite mid-reload.
type List struct {
	mu         sync.RWMutex
	categories []Category
}

// Load reads every *.yaml file directly under dir as one Category and
// returns a populated List. A missing directory yields an empty, valid List
// rather than an error — a ship with no quests configured still runs.
func Load(dir string) (*List, error) {
	l := &List{}
	if err := l.Reload(dir); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads dir and atomically swaps in the new category table.
func (l *List) Reload(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.mu.Lock()
			l.categories = nil
			l.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading quest directory %s: %w", dir, err)
	}

	var categories []Category
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := dir + "/" + e.Name()
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading quest file %s: %w", path, err)
		}
		var cat Category
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return fmt.Errorf("parsing quest file %s: %w", path, err)
		}
		categories = append(categories, cat)
	}

	l.mu.Lock()
	l.categories = categories
	l.mu.Unlock()
	return nil
}

// Categories returns a snapshot of the current catalog.
func (l *List) Categories() []Category {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Category, len(l.categories))
	copy(out, l.categories)
	return out
}

// Quest looks up a quest by its item id across every category.
func (l *List) Quest(itemID uint32) (Quest, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, cat := range l.categories {
		for _, q := range cat.Quests {
			if q.ItemID == itemID {
				return q, true
			}
		}
	}
	return Quest{}, false
}
