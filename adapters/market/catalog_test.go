package market

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `matchweeks:
  - matchweek: 1
    markets:
      - id: 1
        question: "Will Manchester City win the Premier League 2025/26?"
        image: "https://example.com/city.jpg"
        yes_odds: "58%"
        no_odds: "42%"
      - id: 2
        question: "Will Haaland score 40+ goals this season?"
        image: "https://example.com/haaland.jpg"
        yes_odds: "52%"
        no_odds: "48%"
  - matchweek: 2
    markets:
      - id: 3
        question: "Will Liverpool win against Chelsea this week?"
        image: "https://example.com/liverpool.jpg"
        yes_odds: "44%"
        no_odds: "56%"
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "markets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t))
	require.NoError(t, err)

	require.Len(t, catalog.Matchweeks, 2)
	assert.Equal(t, 1, catalog.Matchweeks[0].Matchweek)
	require.Len(t, catalog.Matchweeks[0].Markets, 2)
	assert.Equal(t, "58%", catalog.Matchweeks[0].Markets[0].YesOdds)

	all := catalog.All()
	assert.Len(t, all, 3)

	m, ok := catalog.Find(3)
	require.True(t, ok)
	assert.Contains(t, m.Question, "Liverpool")

	_, ok = catalog.Find(99)
	assert.False(t, ok)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWeiConversion(t *testing.T) {
	// Default bet of 0.001 BNB is 1e15 wei.
	wei := toWei(DefaultBetAmount)
	assert.Equal(t, "1000000000000000", wei.String())

	back := fromWei(wei)
	assert.True(t, back.Equal(DefaultBetAmount))

	assert.True(t, fromWei(nil).Equal(decimal.Zero))
	assert.True(t, fromWei(big.NewInt(0)).Equal(decimal.Zero))
}
