package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
)

type App struct {
	config *config.Config
	api    *api.Client
	cache  *session.Cache
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	cache, err := session.NewCache(c.TokenDir)
	if err != nil {
		log.Printf("error initializing token cache: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewClient(c.ServerURL, cache)

	return &App{config: c, api: apiClient, cache: cache, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// isLoggedIn reflects the local cache only; the server has the final word on
// whether the token is still good.
func (a *App) isLoggedIn() bool {
	return a.cache.Token() != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "logged in"
	}
	return "logged out"
}
