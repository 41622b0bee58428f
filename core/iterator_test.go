package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shrek82/dbquery/backend"
	"github.com/shrek82/dbquery/driver"
)

func iteratorTestManager(t *testing.T, rows []driver.Row) (*Manager, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	name := registerFake(t.Name(), b)
	m, err := New(name, backend.Config{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := m.Connection(context.Background()); err != nil {
		t.Fatalf("Connection failed: %v", err)
	}
	b.conn.nextCols = []string{"n"}
	b.conn.nextRows = rows
	return m, b
}

func TestSelectIteratorBatching(t *testing.T) {
	seed := []driver.Row{{1}, {2}, {3}, {4}, {5}}
	m, b := iteratorTestManager(t, seed)

	calls := 0
	var got []driver.Row
	it, err := m.SelectIterator("SELECT n FROM numbers", func(rows *Rows, extra ...any) (any, error) {
		calls++
		for rows.Next() {
			got = append(got, rows.Row())
		}
		return len(got), rows.Err()
	}, 2)
	if err != nil {
		t.Fatalf("SelectIterator failed: %v", err)
	}

	res, err := it.Call(context.Background())
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("callback must run exactly once, ran %d times", calls)
	}
	if res != 5 {
		t.Errorf("callback return value must be the result, got %v", res)
	}
	if !reflect.DeepEqual(got, seed) {
		t.Errorf("rows out of order or missing: %v", got)
	}

	cur := b.conn.lastCursor
	// 5 rows in batches of 2: fetches of 2, 2 and 1.
	if !reflect.DeepEqual(cur.fetchManyCalls, []int{2, 2, 2}) {
		t.Errorf("expected 3 batch fetches, got %v", cur.fetchManyCalls)
	}
	if cur.closes != 1 {
		t.Errorf("cursor must be closed exactly once, got %d", cur.closes)
	}
}

func TestSelectIteratorCursorOpenDuringCallback(t *testing.T) {
	m, b := iteratorTestManager(t, []driver.Row{{1}})

	it, err := m.SelectIterator("SELECT n FROM numbers", func(rows *Rows, extra ...any) (any, error) {
		if b.conn.lastCursor.closes != 0 {
			t.Error("cursor must stay open while the callback runs")
		}
		return nil, nil
	}, 1)
	if err != nil {
		t.Fatalf("SelectIterator failed: %v", err)
	}
	if _, err := it.Call(context.Background()); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if b.conn.lastCursor.closes != 1 {
		t.Errorf("cursor must be closed after the callback, got %d closes", b.conn.lastCursor.closes)
	}
}

func TestSelectIteratorCallbackError(t *testing.T) {
	m, b := iteratorTestManager(t, []driver.Row{{1}, {2}})

	boom := errors.New("boom")
	it, err := m.SelectIterator("SELECT n FROM numbers", func(rows *Rows, extra ...any) (any, error) {
		return nil, boom
	}, 2)
	if err != nil {
		t.Fatalf("SelectIterator failed: %v", err)
	}

	_, err = it.Call(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("callback error must propagate unchanged, got %v", err)
	}
	if b.conn.lastCursor.closes != 1 {
		t.Errorf("cursor must be closed on the failure path, got %d closes", b.conn.lastCursor.closes)
	}
}

func TestSelectIteratorExtraArgs(t *testing.T) {
	m, _ := iteratorTestManager(t, []driver.Row{{1}})

	it, err := m.SelectIterator("SELECT n FROM numbers", func(rows *Rows, extra ...any) (any, error) {
		return extra, nil
	}, 1, "tag", 42)
	if err != nil {
		t.Fatalf("SelectIterator failed: %v", err)
	}

	res, err := it.Call(context.Background())
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !reflect.DeepEqual(res, []any{"tag", 42}) {
		t.Errorf("extra args not forwarded: %v", res)
	}
}

func TestSelectIteratorInvalidFetchSize(t *testing.T) {
	cb := func(rows *Rows, extra ...any) (any, error) { return nil, nil }
	for _, size := range []int{0, -1} {
		_, err := NewSelectIterator("SELECT 1", cb, size)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("fetch size %d: expected ConfigError, got %v", size, err)
		}
	}
}
