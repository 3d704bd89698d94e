package mocks

import (
	"context"
	"errors"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockDB implements database.DB for repository tests
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	callArgs := m.Called(ctx, sql, args)
	return callArgs.Get(0).(pgconn.CommandTag), callArgs.Error(1)
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	callArgs := m.Called(ctx, sql, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(pgx.Rows), callArgs.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	callArgs := m.Called(ctx, sql, args)
	return callArgs.Get(0).(pgx.Row)
}

// MockRows implements pgx.Rows over in-memory data
type MockRows struct {
	data         [][]any
	currentIndex int
	closed       bool
	err          error
}

// NewMockRows creates rows that yield data in order
func NewMockRows(data ...[]any) *MockRows {
	return &MockRows{data: data, currentIndex: -1}
}

// WithErr makes Err return err once iteration ends
func (m *MockRows) WithErr(err error) *MockRows {
	m.err = err
	return m
}

func (m *MockRows) Close()                                       { m.closed = true }
func (m *MockRows) Err() error                                   { return m.err }
func (m *MockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (m *MockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *MockRows) RawValues() [][]byte                          { return nil }
func (m *MockRows) Conn() *pgx.Conn                              { return nil }

// Closed reports whether the caller released the rows
func (m *MockRows) Closed() bool { return m.closed }

func (m *MockRows) Next() bool {
	m.currentIndex++
	return m.currentIndex < len(m.data)
}

func (m *MockRows) Scan(dest ...any) error {
	if m.currentIndex < 0 || m.currentIndex >= len(m.data) {
		return errors.New("no row to scan")
	}
	return scanInto(m.data[m.currentIndex], dest)
}

func (m *MockRows) Values() ([]any, error) {
	if m.currentIndex < 0 || m.currentIndex >= len(m.data) {
		return nil, errors.New("no row")
	}
	return m.data[m.currentIndex], nil
}

// MockRow implements pgx.Row
type MockRow struct {
	values []any
	err    error
}

// NewMockRow returns a row that scans values
func NewMockRow(values ...any) *MockRow {
	return &MockRow{values: values}
}

// NewMockRowError returns a row whose Scan fails with err
func NewMockRowError(err error) *MockRow {
	return &MockRow{err: err}
}

func (m *MockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	return scanInto(m.values, dest)
}

// scanInto assigns row values to destination pointers. A nil value zeroes the
// destination, which matches how pgx scans NULL into pointer fields.
func scanInto(row []any, dest []any) error {
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		destVal := reflect.ValueOf(dest[i])
		if destVal.Kind() != reflect.Ptr {
			return errors.New("destination must be a pointer")
		}
		if v == nil {
			destVal.Elem().Set(reflect.Zero(destVal.Elem().Type()))
			continue
		}
		destVal.Elem().Set(reflect.ValueOf(v))
	}
	return nil
}
