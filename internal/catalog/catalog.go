// Package catalog holds the static hero, item and ability reference data used
// to turn internal identifiers into display names. A Catalog is built once and
// is read-only afterwards, so a single instance can be shared by every
// compaction.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HeroPrefix is the prefix of every internal hero unit name.
const HeroPrefix = "npc_dota_hero_"

//go:embed default.yaml
var defaultYAML []byte

type Hero struct {
	ID            int    `yaml:"id"`
	Name          string `yaml:"name"`
	LocalizedName string `yaml:"localized_name"`
}

// Item is the subset of item metadata the ranker needs. Qual is OpenDota's
// quality bucket ("consumable", "component", "common", "rare", "epic", ...).
type Item struct {
	ID     int    `yaml:"id"`
	Key    string `yaml:"key"`
	Name   string `yaml:"dname"`
	Cost   int    `yaml:"cost"`
	Qual   string `yaml:"qual"`
	Recipe bool   `yaml:"recipe"`
	Active bool   `yaml:"active"`
}

// IsRecipe reports whether the item is a recipe scroll.
func (i Item) IsRecipe() bool {
	return i.Recipe ||
		strings.Contains(strings.ToLower(i.Key), "recipe") ||
		strings.Contains(strings.ToLower(i.Name), "recipe")
}

type Ability struct {
	Key  string `yaml:"key"`
	Name string `yaml:"dname"`
}

type file struct {
	Heroes    []Hero    `yaml:"heroes"`
	Items     []Item    `yaml:"items"`
	Abilities []Ability `yaml:"abilities"`
}

// Catalog is the immutable reference index.
type Catalog struct {
	heroesByID   map[int]Hero
	heroesByName map[string]Hero
	itemsByID    map[int]Item
	itemsByKey   map[string]Item
	abilities    map[string]string
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from a YAML (or JSON) file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse builds a catalog from YAML or JSON bytes.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Heroes, f.Items, f.Abilities)
}

// New indexes the given reference data. Duplicate ids or names are rejected.
// Item keys are stored without the "item_" prefix.
func New(heroes []Hero, items []Item, abilities []Ability) (*Catalog, error) {
	c := &Catalog{
		heroesByID:   make(map[int]Hero, len(heroes)),
		heroesByName: make(map[string]Hero, len(heroes)),
		itemsByID:    make(map[int]Item, len(items)),
		itemsByKey:   make(map[string]Item, len(items)),
		abilities:    make(map[string]string, len(abilities)),
	}
	for _, h := range heroes {
		if h.Name == "" {
			return nil, fmt.Errorf("hero %d: missing internal name", h.ID)
		}
		if _, dup := c.heroesByID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate hero id %d", h.ID)
		}
		name := strings.ToLower(h.Name)
		if _, dup := c.heroesByName[name]; dup {
			return nil, fmt.Errorf("duplicate hero name %q", h.Name)
		}
		c.heroesByID[h.ID] = h
		c.heroesByName[name] = h
	}
	for _, it := range items {
		it.Key = strings.TrimPrefix(it.Key, "item_")
		if it.Key == "" {
			return nil, fmt.Errorf("item %d: missing key", it.ID)
		}
		if _, dup := c.itemsByID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		c.itemsByID[it.ID] = it
		c.itemsByKey[it.Key] = it
	}
	for _, a := range abilities {
		c.abilities[a.Key] = a.Name
	}
	return c, nil
}

// HeroByID returns the hero with the given numeric id.
func (c *Catalog) HeroByID(id int) (Hero, bool) {
	h, ok := c.heroesByID[id]
	return h, ok
}

// HeroByName resolves an internal unit name ("npc_dota_hero_axe") through the
// reverse index.
func (c *Catalog) HeroByName(name string) (Hero, bool) {
	h, ok := c.heroesByName[strings.ToLower(name)]
	return h, ok
}

// IsHeroName reports whether the identifier is shaped like a hero unit name.
func IsHeroName(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), HeroPrefix)
}

// Item resolves an item by numeric id (as a string) or by key, with or
// without the "item_" prefix.
func (c *Catalog) Item(idOrKey string) (Item, bool) {
	if id, err := strconv.Atoi(idOrKey); err == nil {
		it, ok := c.itemsByID[id]
		return it, ok
	}
	it, ok := c.itemsByKey[strings.TrimPrefix(idOrKey, "item_")]
	return it, ok
}

// AbilityName returns the display name of an ability key.
func (c *Catalog) AbilityName(key string) (string, bool) {
	n, ok := c.abilities[key]
	return n, ok && n != ""
}

// HeroCount returns the number of indexed heroes.
func (c *Catalog) HeroCount() int {
	return len(c.heroesByID)
}

// HeroByQuery resolves a hero by id, internal name, short name ("axe") or
// display name, for CLI arguments.
func (c *Catalog) HeroByQuery(q string) (Hero, bool) {
	if id, err := strconv.Atoi(q); err == nil {
		return c.HeroByID(id)
	}
	if h, ok := c.HeroByName(q); ok {
		return h, true
	}
	if h, ok := c.HeroByName(HeroPrefix + q); ok {
		return h, true
	}
	for _, h := range c.heroesByID {
		if strings.EqualFold(h.LocalizedName, q) {
			return h, true
		}
	}
	return Hero{}, false
}

// Marshal renders reference data in the YAML layout Parse reads.
func Marshal(heroes []Hero, items []Item, abilities []Ability) ([]byte, error) {
	b, err := yaml.Marshal(file{Heroes: heroes, Items: items, Abilities: abilities})
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return b, nil
}
