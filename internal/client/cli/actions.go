package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/lirra/internal/client/client"
	"github.com/dmitrijs2005/lirra/internal/server/models"
)

// Management actions understood by POST /api/v1/admin/management.
const (
	actionListUsers      = "list_users"
	actionChangePlan     = "change_plan"
	actionGenerateTokens = "generate_tokens"
	actionListTokens     = "list_tokens"
	actionRevokeToken    = "revoke_token"
	actionExtendToken    = "extend_token"
	actionStats          = "stats"
)

const listLimit = 50

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func day(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func (a *App) Stats(ctx context.Context) error {
	var st models.Stats
	if err := a.api.Manage(ctx, actionStats, nil, &st); err != nil {
		return err
	}

	a.colors.head.Fprintln(a.out, "Users")
	fmt.Fprintf(a.out, "  total %d, active %d\n", st.TotalUsers, st.ActiveUsers)
	a.colors.head.Fprintln(a.out, "Subscriptions")
	printCounts(a.out, st.ActiveSubscriptions)
	a.colors.head.Fprintln(a.out, "Credential keys")
	printCounts(a.out, st.Tokens)
	a.colors.head.Fprintln(a.out, "Activity")
	fmt.Fprintf(a.out, "  stores %d, transactions %d\n", st.Stores, st.Transactions)
	fmt.Fprintf(a.out, "  revenue %s\n", formatCents(st.RevenueCents))
	return nil
}

func printCounts(w io.Writer, m map[string]int) {
	if len(m) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %d\n", k, m[k])
	}
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (a *App) Users(ctx context.Context, search string) error {
	var page client.Page[*models.Profile]
	params := map[string]any{"limit": listLimit}
	if search != "" {
		params["search"] = search
	}
	if err := a.api.Manage(ctx, actionListUsers, params, &page); err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tACTIVE\tCREATED")
	for _, p := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.ID, p.Email, p.Role, p.IsActive, day(&p.CreatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.colors.info.Fprintf(a.out, "%d of %d users\n", len(page.Items), page.Total)
	return nil
}

func (a *App) Tokens(ctx context.Context, status string) error {
	var page client.Page[*models.CredentialKey]
	params := map[string]any{"limit": listLimit}
	if status != "" {
		params["status"] = status
	}
	if err := a.api.Manage(ctx, actionListTokens, params, &page); err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tKEY\tPLAN\tDAYS\tSTATUS\tEXPIRES")
	for _, k := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", k.ID, k.Key, k.PlanID, k.DurationDays, k.Status, day(k.ExpiresAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.colors.info.Fprintf(a.out, "%d of %d keys\n", len(page.Items), page.Total)
	return nil
}

func (a *App) Generate(ctx context.Context, plan string, days, count int) error {
	var keys []*models.CredentialKey
	params := map[string]any{"plan_id": plan, "duration_days": days, "count": count}
	if err := a.api.Manage(ctx, actionGenerateTokens, params, &keys); err != nil {
		return err
	}

	a.colors.ok.Fprintf(a.out, "Generated %d %s key(s) for %d days\n", len(keys), plan, days)
	for _, k := range keys {
		fmt.Fprintln(a.out, k.Key)
	}
	return nil
}

func (a *App) Revoke(ctx context.Context, id string) error {
	var key models.CredentialKey
	if err := a.api.Manage(ctx, actionRevokeToken, map[string]any{"token_id": id}, &key); err != nil {
		return err
	}
	a.colors.ok.Fprintf(a.out, "Key %s revoked\n", key.Key)
	return nil
}

func (a *App) Extend(ctx context.Context, id string, days int) error {
	var key models.CredentialKey
	if err := a.api.Manage(ctx, actionExtendToken, map[string]any{"token_id": id, "days": days}, &key); err != nil {
		return err
	}
	if key.ExpiresAt != nil {
		a.colors.ok.Fprintf(a.out, "Key %s now expires %s\n", key.Key, day(key.ExpiresAt))
	} else {
		a.colors.ok.Fprintf(a.out, "Key %s now grants %d days\n", key.Key, key.DurationDays)
	}
	return nil
}

func (a *App) ChangePlan(ctx context.Context, userID, plan string, days int) error {
	var sub models.Subscription
	params := map[string]any{"user_id": userID, "plan_id": plan, "duration_days": days}
	if err := a.api.Manage(ctx, actionChangePlan, params, &sub); err != nil {
		return err
	}
	a.colors.ok.Fprintf(a.out, "User %s is on %s until %s\n", sub.UserID, sub.PlanID, day(&sub.ExpiresAt))
	return nil
}

// describe turns a command error into one line for the operator.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, check --addr"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, s)
	}
	return n, nil
}
