package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
)

type mockInserter struct{ mock.Mock }

func (m *mockInserter) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.Product), args.Error(1)
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport_MixedRows(t *testing.T) {
	buf := workbook(t,
		[]any{"Name", "Category", "Price", "Description", "Stock", "Image"},
		[]any{"Desk Lamp", "Home & Kitchen", 25.5, "Warm light for late reading.", 12, "/images/products/lamp.png"},
		[]any{"Mystery", "Food", 3, "Not a real category here.", 1, "/images/x.png"},
		[]any{"Novel", "Books", "cheap", "A long enough description.", 2, "/images/n.png"},
	)

	ins := &mockInserter{}
	ins.On("Insert", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.Name == "Desk Lamp"
	})).Return(models.Product{ID: "1"}, nil).Once()
	ins.On("Insert", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.Name == "Mystery"
	})).Return(models.Product{}, apperr.InvalidField("category", "must be one of the listed values")).Once()

	res, err := Import(context.Background(), buf, ins)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 3, res.Failed[0].Row)
	assert.Equal(t, "category", res.Failed[0].Errors[0].Field)
	assert.Equal(t, 4, res.Failed[1].Row)
	assert.Equal(t, "price", res.Failed[1].Errors[0].Field)
	ins.AssertExpectations(t)
}

func TestImport_ParsesCells(t *testing.T) {
	buf := workbook(t,
		[]any{"image", "stock", "description", "price", "category", "name"},
		[]any{"/images/a.png", 7, "Ten chars or more.", 9.99, "Toys", "Yo-yo"},
	)
	ins := &mockInserter{}
	ins.On("Insert", mock.Anything, models.Product{
		Name: "Yo-yo", Category: "Toys", Price: 9.99, Description: "Ten chars or more.", Stock: 7, Image: "/images/a.png",
	}).Return(models.Product{ID: "1"}, nil).Once()

	res, err := Import(context.Background(), buf, ins)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Failed)
	ins.AssertExpectations(t)
}

func TestImport_NonFinitePriceNeverInserted(t *testing.T) {
	buf := workbook(t,
		[]any{"name", "category", "price", "description", "image"},
		[]any{"Ball", "Sports", "NaN", "Bouncy and round.", "/images/b.png"},
		[]any{"Bat", "Sports", "+Inf", "Wooden and long.", "/images/c.png"},
	)
	ins := &mockInserter{}

	res, err := Import(context.Background(), buf, ins)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	require.Len(t, res.Failed, 2)
	for _, f := range res.Failed {
		assert.Equal(t, "price", f.Errors[0].Field)
		assert.Equal(t, "must be a finite number", f.Errors[0].Msg)
	}
	ins.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestImport_MissingColumns(t *testing.T) {
	buf := workbook(t, []any{"name", "price"})
	_, err := Import(context.Background(), buf, &mockInserter{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "category")
}

func TestImport_NotAWorkbook(t *testing.T) {
	_, err := Import(context.Background(), bytes.NewBufferString("name,price\n"), &mockInserter{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestImport_StoreFailureStops(t *testing.T) {
	buf := workbook(t,
		[]any{"name", "category", "price", "description", "image"},
		[]any{"Ball", "Sports", 5, "Bouncy and round.", "/images/b.png"},
		[]any{"Bat", "Sports", 15, "Wooden and long.", "/images/c.png"},
	)
	ins := &mockInserter{}
	ins.On("Insert", mock.Anything, mock.Anything).Return(models.Product{}, errors.New("db down")).Once()

	_, err := Import(context.Background(), buf, ins)
	assert.ErrorContains(t, err, "row 2")
	ins.AssertExpectations(t)
}

func TestBlank(t *testing.T) {
	assert.True(t, blank(nil))
	assert.True(t, blank([]string{"", "  "}))
	assert.False(t, blank([]string{"", "x"}))
}
