package market

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultBetAmount is the stake used when a prediction request does not
// specify one (0.001 BNB).
var DefaultBetAmount = decimal.RequireFromString("0.001")

// CatalogMarket is one prediction card: the question shown to the user
// with its display odds. The on-chain market shares the same id.
type CatalogMarket struct {
	ID       uint64 `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
	Image    string `yaml:"image" json:"image"`
	YesOdds  string `yaml:"yes_odds" json:"yesOdds"`
	NoOdds   string `yaml:"no_odds" json:"noOdds"`
}

// Matchweek groups the markets offered in one week of play.
type Matchweek struct {
	Matchweek int             `yaml:"matchweek" json:"matchweek"`
	Markets   []CatalogMarket `yaml:"markets" json:"markets"`
}

// Catalog is the full matchweek market configuration.
type Catalog struct {
	Matchweeks []Matchweek `yaml:"matchweeks" json:"matchweeks"`
}

// LoadCatalog reads the matchweek configuration from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return &catalog, nil
}

// Find returns the catalog entry for a market id.
func (c *Catalog) Find(id uint64) (CatalogMarket, bool) {
	for _, week := range c.Matchweeks {
		for _, m := range week.Markets {
			if m.ID == id {
				return m, true
			}
		}
	}
	return CatalogMarket{}, false
}

// All returns every market across matchweeks in catalog order.
func (c *Catalog) All() []CatalogMarket {
	var out []CatalogMarket
	for _, week := range c.Matchweeks {
		out = append(out, week.Markets...)
	}
	return out
}
