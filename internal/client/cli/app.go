package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/lirra/internal/client/client"
	"github.com/dmitrijs2005/lirra/internal/client/config"
)

// adminAPI is the part of client.HTTPClient the commands rely on.
type adminAPI interface {
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	SetToken(accessToken string)
	Manage(ctx context.Context, action string, params map[string]any, out any) error
}

// newAPI is swapped in tests.
var newAPI = func(cfg *config.Config) adminAPI {
	return client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
}

type palette struct {
	ok, info, warn, fail, head *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen),
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
		head: color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.info, p.warn, p.fail, p.head} {
			c.DisableColor()
		}
	}
	return p
}

type App struct {
	config *config.Config
	api    adminAPI
	out    io.Writer
	reader *bufio.Reader
	colors palette
	email  string
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: cfg,
		api:    newAPI(cfg),
		out:    out,
		reader: bufio.NewReader(in),
		colors: newPalette(cfg.NoColor),
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) status() string {
	switch {
	case a.email != "":
		return a.email
	case a.api.LoggedIn():
		return "token"
	default:
		return "not logged in"
	}
}
