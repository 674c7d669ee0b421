package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrijs2005/lirra/internal/client/config"
)

// mockAPI records management calls and fills out from a canned JSON reply.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Login(ctx context.Context, email string, password []byte) error {
	return m.Called(email, string(password)).Error(0)
}

func (m *mockAPI) Logout(ctx context.Context) error { return m.Called().Error(0) }

func (m *mockAPI) LoggedIn() bool { return m.Called().Bool(0) }

func (m *mockAPI) SetToken(token string) { m.Called(token) }

func (m *mockAPI) Manage(ctx context.Context, action string, params map[string]any, out any) error {
	args := m.Called(action, params)
	if reply := args.String(0); reply != "" && out != nil {
		if err := json.Unmarshal([]byte(reply), out); err != nil {
			panic(err)
		}
	}
	return args.Error(1)
}

func newTestApp(t *testing.T, input string) (*App, *mockAPI, *bytes.Buffer) {
	t.Helper()
	api := &mockAPI{}
	orig := newAPI
	newAPI = func(*config.Config) adminAPI { return api }
	t.Cleanup(func() { newAPI = orig })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.NoColor = true

	out := &bytes.Buffer{}
	return NewApp(cfg, strings.NewReader(input), out), api, out
}
