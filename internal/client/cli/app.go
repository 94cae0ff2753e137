// Package cli implements the interactive account CLI: a small REPL over the
// account service API with a locally saved session for trusted devices.
package cli

import (
	"bufio"
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
	"github.com/dmitrijs2005/accountkeeper/internal/client/services"
	"github.com/dmitrijs2005/accountkeeper/internal/client/store"
	"github.com/dmitrijs2005/accountkeeper/internal/common"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	auth     services.AuthService
	accounts services.AccountService
	reader   *bufio.Reader

	userID string
	email  string
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := store.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	as := services.NewAuthService(apiClient, db)
	acs := services.NewAccountService(apiClient)

	return &App{config: c, auth: as, accounts: acs, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userID != ""
}

// resume picks up a session saved by a previous "signin" on a trusted device.
func (a *App) resume(ctx context.Context) {
	saved, err := a.auth.Resume(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			log.Printf("error resuming session: %s", err.Error())
		}
		return
	}
	a.userID = saved.UserID
	a.email = saved.Email
	log.Printf("Resumed session for %s", saved.Email)
}

func (a *App) Run(ctx context.Context) {
	defer a.auth.Close(ctx)
	a.resume(ctx)
	a.Root(ctx)

	// a renewal may have replaced the access token since signin
	if err := a.auth.SaveSession(ctx); err != nil {
		log.Printf("error saving session: %s", err.Error())
	}
}
