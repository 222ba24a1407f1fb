package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestFromSlice_Collect(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFromFunc_Restartable(t *testing.T) {
	runs := 0
	p := FromFunc(func(_ context.Context) Iterator[int] {
		runs++
		return &sliceIter[int]{items: []int{runs}}
	})
	first, _ := Collect(context.Background(), p)
	second, _ := Collect(context.Background(), p)
	if !intSliceEqual(first, []int{1}) || !intSliceEqual(second, []int{2}) {
		t.Errorf("expected fresh iterator per run, got %v then %v", first, second)
	}
}

func TestMap(t *testing.T) {
	doubled := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	got, err := Collect(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestMap_Error(t *testing.T) {
	fail := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("bad value")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), fail)
	if err == nil {
		t.Fatal("expected error")
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("expected [1] before error, got %v", got)
	}
}

func TestMap_TypeConversion(t *testing.T) {
	strs := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("#%d", n), nil
	})
	got, _ := Collect(context.Background(), strs)
	if len(got) != 2 || got[0] != "#1" || got[1] != "#2" {
		t.Errorf("got %v", got)
	}
}

func TestFlatMap(t *testing.T) {
	expanded := FlatMap(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (Iterator[int], error) {
		if n == 2 {
			return &sliceIter[int]{}, nil
		}
		return &sliceIter[int]{items: []int{n, n * 10}}, nil
	})
	got, err := Collect(context.Background(), expanded)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 10, 3, 30}) {
		t.Errorf("got %v", got)
	}
}

func TestFlatMapSlice(t *testing.T) {
	p := FlatMapSlice(FromSlice([][]int{{1, 2}, {}, {3}}), func(_ context.Context, xs []int) ([]int, error) {
		return xs, nil
	})
	got, _ := Collect(context.Background(), p)
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}

	fail := FlatMapSlice(FromSlice([]int{1}), func(_ context.Context, _ int) ([]int, error) {
		return nil, errors.New("boom")
	})
	if _, err := Collect(context.Background(), fail); err == nil {
		t.Error("expected error")
	}
}

func TestFilter(t *testing.T) {
	evens := Filter(FromSlice([]int{1, 2, 3, 4}), func(n int) bool { return n%2 == 0 })
	got, _ := Collect(context.Background(), evens)
	if !intSliceEqual(got, []int{2, 4}) {
		t.Errorf("got %v", got)
	}
}

func TestTap(t *testing.T) {
	var seen []int
	tapped := Tap(FromSlice([]int{1, 2}), func(_ context.Context, n int) error {
		seen = append(seen, n)
		return nil
	})
	got, _ := Collect(context.Background(), tapped)
	if !intSliceEqual(got, []int{1, 2}) || !intSliceEqual(seen, []int{1, 2}) {
		t.Errorf("got %v, seen %v", got, seen)
	}

	fail := Tap(FromSlice([]int{1}), func(_ context.Context, _ int) error { return errors.New("boom") })
	if _, err := Collect(context.Background(), fail); err == nil {
		t.Error("expected tap error to surface")
	}
}

func TestTake(t *testing.T) {
	pulled := 0
	src := Tap(FromSlice([]int{1, 2, 3, 4}), func(_ context.Context, _ int) error {
		pulled++
		return nil
	})
	got, _ := Collect(context.Background(), Take(src, 2))
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
	if pulled != 2 {
		t.Errorf("expected 2 pulls from source, got %d", pulled)
	}
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		size int
		want [][]int
	}{
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"partial tail", []int{1, 2, 3}, 2, [][]int{{1, 2}, {3}}},
		{"empty", nil, 3, nil},
		{"size zero", []int{1, 2}, 0, [][]int{{1}, {2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(context.Background(), Batch(FromSlice(tc.in), tc.size))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if !intSliceEqual(got[i], tc.want[i]) {
					t.Errorf("batch %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBatch_ErrorDiscardsPartial(t *testing.T) {
	src := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, errors.New("bad record")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), Batch(src, 2))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(got) != 1 || !intSliceEqual(got[0], []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestReduce(t *testing.T) {
	sum := Reduce(FromSlice([]int{1, 2, 3}), 0, func(acc, n int) (int, error) { return acc + n, nil })
	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{6}) {
		t.Errorf("got %v", got)
	}

	fail := Reduce(FromSlice([]int{1}), 0, func(int, int) (int, error) { return 0, errors.New("boom") })
	if _, err := Collect(context.Background(), fail); err == nil {
		t.Error("expected reduce error")
	}
}

// pairIter is a stateful stage that joins consecutive values.
type pairIter struct {
	source Iterator[int]
	carry  []int
}

func (it *pairIter) Next(ctx context.Context) (int, bool, error) {
	for len(it.carry) < 2 {
		v, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		it.carry = append(it.carry, v)
	}
	out := it.carry[0]*10 + it.carry[1]
	it.carry = it.carry[1:]
	return out, true, nil
}

func (it *pairIter) Close() error { return it.source.Close() }

func TestThrough_FreshStatePerRun(t *testing.T) {
	p := Through(FromSlice([]int{1, 2, 3}), func(src Iterator[int]) Iterator[int] {
		return &pairIter{source: src}
	})
	for run := 0; run < 2; run++ {
		got, err := Collect(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		if !intSliceEqual(got, []int{12, 23}) {
			t.Errorf("run %d: got %v", run, got)
		}
	}
}

func TestDrainAndForEach(t *testing.T) {
	var sum int
	err := ForEach(context.Background(), FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) error {
		sum += n
		return nil
	})
	if err != nil || sum != 6 {
		t.Errorf("sum=%d err=%v", sum, err)
	}

	err = Drain(FromSlice([]int{1}), func(context.Context, int) error { return errors.New("sink") }).Run(context.Background())
	if err == nil {
		t.Error("expected sink error")
	}
}

func TestBuffer_PreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	got, err := Collect(context.Background(), Buffer(FromSlice(in), 4))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, in) {
		t.Errorf("buffer reordered values")
	}
}

func TestBuffer_Error(t *testing.T) {
	src := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), Buffer(src, 2))
	if err == nil {
		t.Fatal("expected error")
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("got %v", got)
	}
}

func TestBuffer_EarlyClose(t *testing.T) {
	in := make([]int, 1000)
	iter := Buffer(FromSlice(in), 2).Iter(context.Background())
	if _, ok, err := iter.Next(context.Background()); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if err := iter.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestBuffer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := FromFunc(func(_ context.Context) Iterator[int] { return &blockingIter{} })
	iter := Buffer(block, 1).Iter(ctx)
	cancel()
	if _, _, err := iter.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	_ = iter.Close()
}

type blockingIter struct{}

func (blockingIter) Next(ctx context.Context) (int, bool, error) {
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func (blockingIter) Close() error { return nil }

// --- helpers ---

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
