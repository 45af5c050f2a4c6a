package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arcadia-live/chat-service/internal/domain"
)

// defaultGames seeds the catalog on first run.
var defaultGames = []domain.Game{
	{ID: "mario", Name: "Super Mario", URL: "https://games-site.github.io/projects/mario/index.html", Desc: "The classic platforming adventure."},
	{ID: "paperio", Name: "Paper.io 2", URL: "https://games-site.github.io/projects/paperio2/index.html", Desc: "Conquer as much territory as possible."},
	{ID: "pacman", Name: "Pac-Man", URL: "https://games-site.github.io/projects/pacman/index.html", Desc: "Navigate the maze and eat the dots."},
	{ID: "2048", Name: "2048", URL: "https://games-site.github.io/projects/2048/index.html", Desc: "Slide tiles to reach 2048."},
	{ID: "flappy", Name: "Flappy Bird", URL: "https://games-site.github.io/projects/flappy-bird/index.html", Desc: "Fly through the pipes."},
	{ID: "mines", Name: "Minesweeper", URL: "https://games-site.github.io/projects/minesweeper/index.html", Desc: "Classic logic mine-clearing."},
	{ID: "doodle", Name: "Doodle Jump", URL: "https://games-site.github.io/projects/doodle-jump/index.html", Desc: "Classic endless jumper."},
	{ID: "cookie", Name: "Cookie Clicker", URL: "https://games-site.github.io/projects/cookie-clicker/index.html", Desc: "Bake an infinite amount of cookies."},
}

// GameCatalog is the read-mostly game launcher listing, backed by a JSON
// file. It is seeded with a default list when the file does not exist.
type GameCatalog struct {
	path string

	mu    sync.RWMutex
	games []domain.Game
}

// LoadGameCatalog reads the catalog from path, writing the default catalog
// there first if the file is missing.
func LoadGameCatalog(path string) (*GameCatalog, error) {
	c := &GameCatalog{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := c.seed(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game catalog: %w", err)
	}

	if err := json.Unmarshal(data, &c.games); err != nil {
		return nil, fmt.Errorf("corrupt game catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *GameCatalog) seed() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := json.MarshalIndent(defaultGames, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode default catalog: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to seed game catalog: %w", err)
	}

	c.games = append([]domain.Game(nil), defaultGames...)
	return nil
}

// Games returns a copy of the catalog entries.
func (c *GameCatalog) Games() []domain.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]domain.Game(nil), c.games...)
}
