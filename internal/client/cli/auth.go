package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/lirra/internal/common"
)

// TokenEnv names the variable holding a preissued admin access token.
const TokenEnv = "LIRRA_ADMIN_TOKEN"

var errNoCredentials = errors.New("no credentials: set " + TokenEnv + " or pass --email")

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login asks for an email and a hidden password and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.loginAs(ctx, email)
}

func (a *App) loginAs(ctx context.Context, email string) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, email, password); err != nil {
		return err
	}
	a.email = email
	a.colors.ok.Fprintf(a.out, "Logged in as %s\n", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.email = ""
	if err != nil {
		return err
	}
	a.colors.ok.Fprintln(a.out, "Logged out")
	return nil
}

// authenticate prepares a one-shot command: the environment token wins over
// an interactive login.
func (a *App) authenticate(ctx context.Context, email string) error {
	if token := os.Getenv(TokenEnv); token != "" {
		a.api.SetToken(token)
		return nil
	}
	if email == "" {
		return errNoCredentials
	}
	return a.loginAs(ctx, email)
}
