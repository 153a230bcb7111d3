package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/apple-card-csv/internal/models"
)

func TestStep(t *testing.T) {
	l := DefaultLayout()
	open := &models.Transaction{Date: "01/15/2020", Type: "Transactions", Description: "COFFEE", Amount: "$4.50"}

	t.Run("banner sets the type and closes the open transaction", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Transactions", Open: open}, Row{7: "Payments"})

		assert.Equal(t, RowBanner, kind)
		assert.Equal(t, "Payments", s.Type)
		assert.Nil(t, s.Open)
		require.NotNil(t, done)
		assert.Equal(t, "COFFEE", done.Description)
	})

	t.Run("lone date in the type column is not a banner", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Transactions"}, Row{7: "01/15/2020"})

		assert.Equal(t, RowNoDesc, kind)
		assert.Equal(t, "Transactions", s.Type)
		assert.Nil(t, done)
	})

	t.Run("lone value outside the type column clears the type", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Payments", Open: open}, Row{60: "Total payments for this period"})

		assert.Equal(t, RowBanner, kind)
		assert.Empty(t, s.Type)
		assert.Nil(t, s.Open)
		require.NotNil(t, done)
		assert.Equal(t, "COFFEE", done.Description)
	})

	t.Run("lone date in the date column is a banner without type", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Transactions"}, Row{9: "01/15/2020"})

		assert.Equal(t, RowBanner, kind)
		assert.Empty(t, s.Type)
		assert.Nil(t, done)
	})

	t.Run("row without description is ignored", func(t *testing.T) {
		in := State{Type: "Transactions", Open: open}
		s, done, kind := Step(l, in, Row{9: "01/16/2020", 111: "$1.00"})

		assert.Equal(t, RowNoDesc, kind)
		assert.Equal(t, in, s)
		assert.Nil(t, done)
	})

	t.Run("description-only row continues the open description", func(t *testing.T) {
		in := State{Open: open}
		s, done, kind := Step(l, in, Row{21: "SAN FRANCISCO CA"})

		assert.Equal(t, RowContinuation, kind)
		assert.Nil(t, done)
		require.NotNil(t, s.Open)
		assert.Equal(t, "COFFEE\nSAN FRANCISCO CA", s.Open.Description)
		assert.Equal(t, "COFFEE", open.Description, "input state must not be modified")
	})

	t.Run("continuation without open transaction is dropped", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Payments"}, Row{21: "stray line"})

		assert.Equal(t, RowOrphan, kind)
		assert.Nil(t, done)
		assert.Nil(t, s.Open)
		assert.Equal(t, "Payments", s.Type)
	})

	t.Run("row with unparseable date is ignored", func(t *testing.T) {
		in := State{Open: open}
		s, done, kind := Step(l, in, Row{7: "Total", 21: "Daily Cash", 111: "$3.00"})

		assert.Equal(t, RowNoDate, kind)
		assert.Equal(t, in, s)
		assert.Nil(t, done)
	})

	t.Run("dated row opens a transaction and closes the previous one", func(t *testing.T) {
		s, done, kind := Step(l, State{Type: "Transactions", Open: open},
			Row{9: "01/16/2020", 21: "GROCER", 85: "2%", 89: "$0.50", 110: "$25.00"})

		assert.Equal(t, RowTransaction, kind)
		require.NotNil(t, done)
		assert.Equal(t, "COFFEE", done.Description)
		assert.Equal(t, &models.Transaction{
			Date:             "01/16/2020",
			Type:             "Transactions",
			Description:      "GROCER",
			DailyCashPercent: "2%",
			DailyCashAmount:  "$0.50",
			Amount:           "$25.00",
		}, s.Open)
	})

	t.Run("date falls back to the type column", func(t *testing.T) {
		s, _, kind := Step(l, State{}, Row{7: "01/16/2020", 21: "GROCER", 111: "$25.00"})

		assert.Equal(t, RowTransaction, kind)
		require.NotNil(t, s.Open)
		assert.Equal(t, "01/16/2020", s.Open.Date)
	})

	t.Run("daily cash percent falls back to column 83", func(t *testing.T) {
		s, _, _ := Step(l, State{}, Row{9: "01/16/2020", 21: "GROCER", 83: "1%", 111: "$25.00"})

		require.NotNil(t, s.Open)
		assert.Equal(t, "1%", s.Open.DailyCashPercent)
	})
}

func TestStep_AmountFallback(t *testing.T) {
	l := DefaultLayout()
	tests := []struct {
		name     string
		amounts  Row
		expected string
	}{
		{"only 108", Row{108: "$7.00"}, "$7.00"},
		{"109 beats 108", Row{109: "$4.50", 108: "ignored"}, "$4.50"},
		{"111 beats everything", Row{111: "$1", 110: "$2", 109: "$3", 108: "$4", 107: "$5"}, "$1"},
		{"107 last", Row{107: "$5"}, "$5"},
		{"none", Row{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Row{9: "2020-01-02", 21: "Coffee Shop", 50: "filler"}
			for k, v := range tt.amounts {
				r[k] = v
			}
			s, _, _ := Step(l, State{}, r)
			require.NotNil(t, s.Open)
			assert.Equal(t, tt.expected, s.Open.Amount)
		})
	}
}

func TestInterpret(t *testing.T) {
	l := DefaultLayout()

	t.Run("merges continuation rows", func(t *testing.T) {
		_, txns := Interpret(l, State{}, []Row{
			{9: "2020-01-02", 21: "A", 111: "$1.00"},
			{21: "B"},
		})

		require.Len(t, txns, 1)
		assert.Equal(t, "A\nB", txns[0].Description)
	})

	t.Run("applies the banner to following transactions", func(t *testing.T) {
		s, txns := Interpret(l, State{}, []Row{
			{7: "Groceries"},
			{9: "2020-01-02", 21: "X", 111: "$1.00"},
			{9: "2020-01-03", 21: "Y", 111: "$2.00"},
		})

		require.Len(t, txns, 2)
		assert.Equal(t, "Groceries", txns[0].Type)
		assert.Equal(t, "Groceries", txns[1].Type)
		assert.Equal(t, "Groceries", s.Type)
		assert.Nil(t, s.Open)
	})

	t.Run("matches the documented coffee example", func(t *testing.T) {
		_, txns := Interpret(l, State{}, []Row{
			{9: "2020-01-02", 21: "Coffee Shop", 109: "$4.50", 108: "ignored"},
		})

		require.Len(t, txns, 1)
		assert.Equal(t, models.Transaction{
			Date:        "2020-01-02",
			Description: "Coffee Shop",
			Amount:      "$4.50",
		}, txns[0])
	})

	t.Run("keeps discovery order", func(t *testing.T) {
		_, txns := Interpret(l, State{Type: "Transactions"}, []Row{
			{9: "01/02/2020", 21: "first", 111: "$1"},
			{21: "first, line 2"},
			{7: "Payments"},
			{21: "orphan"},
			{9: "01/01/2020", 21: "second", 111: "-$5"},
			{7: "Total payments", 111: "-$5"},
		})

		require.Len(t, txns, 2)
		assert.Equal(t, "first\nfirst, line 2", txns[0].Description)
		assert.Equal(t, "Transactions", txns[0].Type)
		assert.Equal(t, "second", txns[1].Description)
		assert.Equal(t, "Payments", txns[1].Type)
	})

	t.Run("lone summary row closes the record and clears the type", func(t *testing.T) {
		s, txns := Interpret(l, State{Type: "Payments"}, []Row{
			{9: "01/02/2020", 21: "A", 111: "-$10.00"},
			{60: "Total payments for this period"},
			{9: "01/03/2020", 21: "B", 111: "$2.00"},
		})

		require.Len(t, txns, 2)
		assert.Equal(t, "Payments", txns[0].Type)
		assert.Empty(t, txns[1].Type)
		assert.Empty(t, s.Type)
	})

	t.Run("empty page", func(t *testing.T) {
		s, txns := Interpret(l, State{Type: "Payments"}, nil)
		assert.Empty(t, txns)
		assert.Equal(t, "Payments", s.Type)
	})
}
