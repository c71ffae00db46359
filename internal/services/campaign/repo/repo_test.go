package repo

import (
	"context"
	"errors"
	"testing"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/store"
)

type fakeRows struct {
	phrases []string
	pairs   [][][]any
	i       int
	iterErr error
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.phrases) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = f.phrases[f.i-1]
	*(dest[1].(*[][]any)) = f.pairs[f.i-1]
	return nil
}

func (f *fakeRows) Err() error        { return f.iterErr }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return []string{"phrase", "views_by_hour"} }

type fakeCH struct {
	rows     store.Rows
	queryErr error
	lastSQL  string
	lastArgs []any
}

func (f *fakeCH) Insert(context.Context, string, []string, [][]any) error { return nil }
func (f *fakeCH) Close() error                                            { return nil }
func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func TestViewsByHourScansTuples(t *testing.T) {
	ch := &fakeCH{rows: &fakeRows{
		phrases: []string{"buy stars", "stars cheap"},
		pairs: [][][]any{
			{{uint8(14), int64(7)}, {uint8(9), int64(3)}},
			{},
		},
	}}
	r := NewCH(ch)

	got, err := r.ViewsByHour(context.Background(), 42)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	first := got["buy stars"]
	if len(first) != 2 || first[0].Hour != 14 || first[0].Delta != 7 || first[1].Hour != 9 {
		t.Fatalf("buy stars = %+v", first)
	}
	if len(got["stars cheap"]) != 0 {
		t.Fatalf("stars cheap = %+v", got["stars cheap"])
	}
	if len(ch.lastArgs) != 1 {
		t.Fatalf("args = %v", ch.lastArgs)
	}
}

func TestViewsByHourWidensDriverNumerics(t *testing.T) {
	ch := &fakeCH{rows: &fakeRows{
		phrases: []string{"p"},
		pairs:   [][][]any{{{uint16(3), uint64(9)}, {int32(5), float64(2)}}},
	}}
	got, err := NewCH(ch).ViewsByHour(context.Background(), 1)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	d := got["p"]
	if d[0].Hour != 3 || d[0].Delta != 9 || d[1].Hour != 5 || d[1].Delta != 2 {
		t.Fatalf("deltas = %+v", d)
	}
}

func TestViewsByHourQueryFailure(t *testing.T) {
	boom := errors.New("ch down")
	_, err := NewCH(&fakeCH{queryErr: boom}).ViewsByHour(context.Background(), 1)
	if !errors.Is(err, boom) || perr.CodeOf(err) != perr.ErrorCodeDB {
		t.Fatalf("err = %v", err)
	}
}

func TestViewsByHourIterationFailure(t *testing.T) {
	ch := &fakeCH{rows: &fakeRows{iterErr: errors.New("stream cut")}}
	_, err := NewCH(ch).ViewsByHour(context.Background(), 1)
	if perr.CodeOf(err) != perr.ErrorCodeDB {
		t.Fatalf("err = %v", err)
	}
}

func TestViewsByHourWithoutBackend(t *testing.T) {
	_, err := NewCH(nil).ViewsByHour(context.Background(), 1)
	if perr.CodeOf(err) != perr.ErrorCodeNotInitialized {
		t.Fatalf("err = %v", err)
	}
}
