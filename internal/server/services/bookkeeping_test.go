package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookkeeping(t *testing.T) (*BookkeepingService, *memDB, *models.Store) {
	t.Helper()
	freezeTime(t)
	db, _ := newSQLMockDB(t)
	rm, mem := newMemManager()
	st := mem.addStore("owner", "UTC")
	mem.roles[[2]string{st.ID, "cash"}] = models.StoreRoleCashier
	mem.roles[[2]string{st.ID, "view"}] = models.StoreRoleViewer
	return NewBookkeepingService(db, rm), mem, st
}

func sale(amount int64, category string) TransactionInput {
	return TransactionInput{Type: models.TransactionSale, Category: category, AmountCents: amount, Quantity: 1, PaymentMethod: "cash"}
}

func TestCreateTransaction(t *testing.T) {
	s, _, st := newBookkeeping(t)
	ctx := context.Background()

	tx, err := s.Create(ctx, "cash", st.ID, sale(1250, " Food "))
	require.NoError(t, err)
	assert.Equal(t, "food", tx.Category)
	assert.Equal(t, testNow, tx.OccurredAt)
	require.NotNil(t, tx.CreatedBy)
	assert.Equal(t, "cash", *tx.CreatedBy)

	_, err = s.Create(ctx, "view", st.ID, sale(100, "food"))
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = s.Create(ctx, "stranger", st.ID, sale(100, "food"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreateTransaction_Validation(t *testing.T) {
	s, _, st := newBookkeeping(t)

	cases := map[string]TransactionInput{
		"zero amount":      {Type: models.TransactionSale, Category: "food", Quantity: 1},
		"negative cost":    {Type: models.TransactionSale, Category: "food", AmountCents: 1, CostCents: -1, Quantity: 1},
		"zero quantity":    {Type: models.TransactionSale, Category: "food", AmountCents: 1},
		"bad type":         {Type: "refund", Category: "food", AmountCents: 1, Quantity: 1},
		"unknown category": {Type: models.TransactionSale, Category: "yachts", AmountCents: 1, Quantity: 1},
		"wrong type cat":   {Type: models.TransactionExpense, Category: "food", AmountCents: 1, Quantity: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(context.Background(), "owner", st.ID, in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestCustomCategory(t *testing.T) {
	s, _, st := newBookkeeping(t)
	ctx := context.Background()

	c, err := s.CreateCategory(ctx, "owner", st.ID, " Flowers ", models.TransactionSale)
	require.NoError(t, err)
	assert.Equal(t, "flowers", c.Name)

	_, err = s.CreateCategory(ctx, "owner", st.ID, "flowers", models.TransactionSale)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	_, err = s.CreateCategory(ctx, "owner", st.ID, "food", models.TransactionSale)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	_, err = s.CreateCategory(ctx, "cash", st.ID, "tips", models.TransactionSale)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = s.Create(ctx, "cash", st.ID, sale(500, "flowers"))
	require.NoError(t, err)

	cats, err := s.Categories(ctx, "view", st.ID, models.TransactionSale)
	require.NoError(t, err)
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"beverages", "clothing", "electronics", "flowers", "food", "other", "services"}, names)

	all, err := s.Categories(ctx, "view", st.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 14)
	assert.Equal(t, models.TransactionExpense, all[0].Type)

	require.NoError(t, s.DeleteCategory(ctx, "owner", st.ID, c.ID))
	_, err = s.Create(ctx, "cash", st.ID, sale(500, "flowers"))
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestListTransactions(t *testing.T) {
	s, _, st := newBookkeeping(t)
	ctx := context.Background()

	for i := range 5 {
		in := sale(int64(100*(i+1)), "food")
		in.OccurredAt = testNow.Add(time.Duration(-i) * time.Hour)
		_, err := s.Create(ctx, "owner", st.ID, in)
		require.NoError(t, err)
	}
	exp := TransactionInput{Type: models.TransactionExpense, Category: "rent", AmountCents: 9000, Quantity: 1, OccurredAt: testNow.Add(-time.Minute)}
	_, err := s.Create(ctx, "owner", st.ID, exp)
	require.NoError(t, err)

	pg, err := s.List(ctx, "view", models.TransactionFilter{StoreID: st.ID, Type: models.TransactionSale, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, pg.Total)
	require.Len(t, pg.Items, 2)
	assert.Equal(t, int64(100), pg.Items[0].AmountCents, "newest first")

	pg, err = s.List(ctx, "view", models.TransactionFilter{StoreID: st.ID, Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 500, pg.Limit)
	assert.Len(t, pg.Items, 6)

	pg, err = s.List(ctx, "view", models.TransactionFilter{StoreID: st.ID})
	require.NoError(t, err)
	assert.Equal(t, 50, pg.Limit)

	_, err = s.List(ctx, "view", models.TransactionFilter{StoreID: st.ID, From: testNow, To: testNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUpdateDeleteTransaction(t *testing.T) {
	s, mem, st := newBookkeeping(t)
	ctx := context.Background()

	tx, err := s.Create(ctx, "cash", st.ID, sale(100, "food"))
	require.NoError(t, err)

	in := sale(300, "beverages")
	in.Quantity = 3
	upd, err := s.Update(ctx, "owner", st.ID, tx.ID, in)
	require.NoError(t, err)
	assert.Equal(t, int64(300), upd.AmountCents)
	assert.Equal(t, "cash", *mem.txs[tx.ID].CreatedBy)

	got, err := s.Get(ctx, "view", st.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "beverages", got.Category)

	assert.ErrorIs(t, s.Delete(ctx, "view", st.ID, tx.ID), common.ErrorForbidden)
	require.NoError(t, s.Delete(ctx, "cash", st.ID, tx.ID))
	assert.ErrorIs(t, s.Delete(ctx, "cash", st.ID, tx.ID), common.ErrorNotFound)
}

func TestUpdateTransaction_KeepsOccurredAt(t *testing.T) {
	s, _, st := newBookkeeping(t)
	ctx := context.Background()
	threeDaysAgo := testNow.Add(-72 * time.Hour)

	in := sale(100, "food")
	in.OccurredAt = threeDaysAgo
	tx, err := s.Create(ctx, "cash", st.ID, in)
	require.NoError(t, err)

	upd, err := s.Update(ctx, "cash", st.ID, tx.ID, sale(150, "food"))
	require.NoError(t, err)
	assert.Equal(t, int64(150), upd.AmountCents)
	assert.Equal(t, threeDaysAgo, upd.OccurredAt)

	moved := sale(150, "food")
	moved.OccurredAt = testNow.Add(-time.Hour)
	upd, err = s.Update(ctx, "cash", st.ID, tx.ID, moved)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-time.Hour), upd.OccurredAt)

	_, err = s.Update(ctx, "cash", st.ID, "missing", sale(150, "food"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExportCSV(t *testing.T) {
	s, _, st := newBookkeeping(t)
	ctx := context.Background()

	in := sale(1205, "food")
	in.Description = `large "combo", extra`
	in.Quantity = 2
	in.CostCents = 400
	_, err := s.Create(ctx, "owner", st.ID, in)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(ctx, "view", models.TransactionFilter{StoreID: st.ID, Limit: 1, Offset: 5}, &buf))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2, "limit and offset are ignored")
	assert.Equal(t, csvHeader, recs[0])
	assert.Equal(t, testNow.Format(time.RFC3339), recs[1][1])
	assert.Equal(t, `large "combo", extra`, recs[1][4])
	assert.Equal(t, []string{"2", "12.05", "4.00", "cash"}, recs[1][5:])
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.07", formatCents(7))
	assert.Equal(t, "12.05", formatCents(1205))
	assert.Equal(t, "-3.10", formatCents(-310))
}
