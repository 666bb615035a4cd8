// Package keywords loads the category catalogue and builds the tiered keyword
// dictionary used for scoring.
package keywords

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
)

//go:embed categories/*.yaml
var embedded embed.FS

const (
	embeddedDir     = "categories"
	fileExt         = ".yaml"
	fileExtAlt      = ".yml"
	newsSuffix      = " 뉴스"
	sectionFallback = "100"
	logKeyFile      = "file"
)

// Tier is a keyword weight class.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

// Tier weights.
const (
	WeightTier1 = 10
	WeightTier2 = 7
	WeightTier3 = 3
)

// Weight returns the score added for every keyword of this tier found in a title.
func (t Tier) Weight() float64 {
	switch t {
	case Tier1:
		return WeightTier1
	case Tier2:
		return WeightTier2
	case Tier3:
		return WeightTier3
	default:
		return 0
	}
}

func (t Tier) String() string {
	return "Tier" + strconv.Itoa(int(t))
}

// TierSet is the globally deduplicated keyword set of one tier.
type TierSet struct {
	Tier     Tier
	Weight   float64
	Keywords []string
}

// Category is one entry of the catalogue as stored in a YAML file.
type Category struct {
	Name         string   `yaml:"name"`
	Label        string   `yaml:"label"`
	Section      string   `yaml:"section"`
	Order        int      `yaml:"order"`
	SearchTopics []string `yaml:"search_topics"`
	Tier1        []string `yaml:"tier1"`
	Tier2        []string `yaml:"tier2"`
	Tier3        []string `yaml:"tier3"`
}

// Dictionary is the immutable result of loading the catalogue.
type Dictionary struct {
	categories []Category
	tiers      []TierSet
}

// Load reads category files from dir, or the embedded catalogue when dir is empty.
func Load(dir string, logger *zerolog.Logger) (*Dictionary, error) {
	if dir == "" {
		sub, err := fs.Sub(embedded, embeddedDir)
		if err != nil {
			return nil, fmt.Errorf("open embedded catalogue: %w", err)
		}

		return LoadFS(sub, logger)
	}

	return LoadFS(os.DirFS(dir), logger)
}

// LoadFS reads every YAML file at the root of fsys. A file that cannot be read
// or parsed is logged and skipped.
func LoadFS(fsys fs.FS, logger *zerolog.Logger) (*Dictionary, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read catalogue dir: %w", err)
	}

	categories := make([]Category, 0, len(entries))

	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != fileExt && ext != fileExtAlt) {
			continue
		}

		cat, err := readCategory(fsys, entry.Name())
		if err != nil {
			logger.Warn().Err(err).Str(logKeyFile, entry.Name()).Msg("failed to load keyword category")
			continue
		}

		categories = append(categories, cat)
	}

	return New(categories)
}

func readCategory(fsys fs.FS, name string) (Category, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Category{}, fmt.Errorf("read %s: %w", name, err)
	}

	var cat Category
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Category{}, fmt.Errorf("parse %s: %w", name, err)
	}

	cat.Label = strings.TrimSpace(cat.Label)
	cat.Name = strings.TrimSpace(cat.Name)

	if cat.Label == "" {
		return Category{}, fmt.Errorf("%w: %s has no label", errors.ErrInvalidInput, name)
	}

	if cat.Name == "" {
		cat.Name = strings.TrimSuffix(name, path.Ext(name))
	}

	return cat, nil
}

// New builds a dictionary from already parsed categories. Categories sharing a
// label are collapsed to the first one.
func New(categories []Category) (*Dictionary, error) {
	seen := make(map[string]struct{}, len(categories))
	kept := make([]Category, 0, len(categories))

	for _, cat := range categories {
		if _, ok := seen[cat.Label]; ok {
			continue
		}

		seen[cat.Label] = struct{}{}

		kept = append(kept, cat)
	}

	if len(kept) == 0 {
		return nil, errors.ErrEmptyDictionary
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Order < kept[j].Order
	})

	return &Dictionary{
		categories: kept,
		tiers:      buildTiers(kept),
	}, nil
}

func buildTiers(categories []Category) []TierSet {
	var tier1, tier2, tier3 []string

	for _, cat := range categories {
		tier1 = append(tier1, cat.Tier1...)
		tier2 = append(tier2, cat.Tier2...)
		tier3 = append(tier3, cat.Tier3...)
	}

	return []TierSet{
		NewTierSet(Tier1, tier1),
		NewTierSet(Tier2, tier2),
		NewTierSet(Tier3, tier3),
	}
}

// NewTierSet deduplicates and sorts keywords. Blank keywords are dropped.
func NewTierSet(tier Tier, keywords []string) TierSet {
	set := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}

		if _, ok := set[kw]; ok {
			continue
		}

		set[kw] = struct{}{}

		out = append(out, kw)
	}

	sort.Strings(out)

	return TierSet{Tier: tier, Weight: tier.Weight(), Keywords: out}
}

// Tiers returns the tier sets in scan order Tier1, Tier2, Tier3.
func (d *Dictionary) Tiers() []TierSet {
	out := make([]TierSet, len(d.tiers))
	for i, t := range d.tiers {
		out[i] = TierSet{Tier: t.Tier, Weight: t.Weight, Keywords: append([]string(nil), t.Keywords...)}
	}

	return out
}

// Categories returns the catalogue in menu order.
func (d *Dictionary) Categories() []Category {
	return append([]Category(nil), d.categories...)
}

// Labels returns the category labels in menu order.
func (d *Dictionary) Labels() []string {
	labels := make([]string, len(d.categories))
	for i, c := range d.categories {
		labels[i] = c.Label
	}

	return labels
}

// SearchTopics maps every category label to its search topics.
func (d *Dictionary) SearchTopics() map[string][]string {
	out := make(map[string][]string, len(d.categories))
	for _, c := range d.categories {
		out[c.Label] = append([]string(nil), c.SearchTopics...)
	}

	return out
}

// Resolve finds a category by label, name or 1-based menu index.
func (d *Dictionary) Resolve(input string) (Category, error) {
	input = strings.TrimSpace(input)

	for _, c := range d.categories {
		if c.Label == input || strings.EqualFold(c.Name, input) {
			return c, nil
		}
	}

	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(d.categories) {
		return d.categories[idx-1], nil
	}

	return Category{}, fmt.Errorf("%w: %q", errors.ErrUnknownCategory, input)
}

// Queries returns the search queries of a category: its topics, the label and "<label> 뉴스".
func (d *Dictionary) Queries(label string) ([]string, error) {
	cat, err := d.Resolve(label)
	if err != nil {
		return nil, err
	}

	return cat.Queries(), nil
}

// Queries returns the search queries of the category.
func (c Category) Queries() []string {
	out := make([]string, 0, len(c.SearchTopics)+2)
	out = append(out, c.SearchTopics...)
	out = append(out, c.Label, c.Label+newsSuffix)

	return out
}

// RankingSection returns the ranking page section id, defaulting to the politics section.
func (c Category) RankingSection() string {
	if c.Section != "" {
		return c.Section
	}

	return sectionFallback
}
