package sunft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const (
	weekPlusMinute = 60*60*24*7 + 60
	streamRate     = 1000
)

func twoItemBundle(principal int64, startedAt int64) (*Bundle, []LockedItem) {
	b := &Bundle{ID: 1, Principal: decimal.NewFromInt(principal), StreamStartedAt: startedAt}
	items := []LockedItem{
		{BundleID: 1, Index: 0, Rate: decimal.NewFromInt(streamRate), Duration: weekPlusMinute, Locked: true},
		{BundleID: 1, Index: 1, Rate: decimal.NewFromInt(streamRate), Duration: weekPlusMinute, Locked: true},
	}
	return b, items
}

func TestEvaluateUnlocksFirstItemExactlyAtDuration(t *testing.T) {
	start := int64(1_000)
	b, items := twoItemBundle(streamRate*weekPlusMinute, start)

	plan := Evaluate(b, items, start+weekPlusMinute, CumulativeCost{})
	want := UnlockPlan{Indexes: []int{0}, Progress: 0}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	Apply(b, items, plan)
	if b.CurrentIndex != 1 || items[0].Locked || !items[1].Locked {
		t.Fatalf("unexpected state: index=%d locks=[%v %v]", b.CurrentIndex, items[0].Locked, items[1].Locked)
	}
	if got := Progress(b, items, start+weekPlusMinute); got != 0 {
		t.Fatalf("progress: want=0 got=%d", got)
	}
}

func TestEvaluateRolloverProgress(t *testing.T) {
	start := int64(1_000)
	half := int64(weekPlusMinute / 2)
	b, items := twoItemBundle(streamRate*weekPlusMinute, start)
	now := start + weekPlusMinute + half

	plan := Evaluate(b, items, now, CumulativeCost{})
	if diff := cmp.Diff([]int{0}, plan.Indexes); diff != "" {
		t.Fatalf("indexes mismatch (-want +got):\n%s", diff)
	}
	Apply(b, items, plan)
	if !items[1].Locked {
		t.Fatalf("second item must stay locked without cumulative funding")
	}
	if got := Progress(b, items, now); got < half {
		t.Fatalf("progress: want>=%d got=%d", half, got)
	}
}

func TestEvaluateRolloverForAnyRemainder(t *testing.T) {
	start := int64(50)
	for _, x := range []int64{0, 1, 60, weekPlusMinute - 1} {
		b, items := twoItemBundle(streamRate*weekPlusMinute, start)
		now := start + weekPlusMinute + x
		Apply(b, items, Evaluate(b, items, now, CumulativeCost{}))
		if b.CurrentIndex != 1 {
			t.Fatalf("x=%d: current index want=1 got=%d", x, b.CurrentIndex)
		}
		if got := Progress(b, items, now); got != x {
			t.Fatalf("x=%d: progress want=%d got=%d", x, x, got)
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	start := int64(10)
	b, items := twoItemBundle(2*streamRate*weekPlusMinute, start)
	now := start + weekPlusMinute + 5

	Apply(b, items, Evaluate(b, items, now, CumulativeCost{}))
	first := b.CurrentIndex
	second := Evaluate(b, items, now, CumulativeCost{})
	if len(second.Indexes) != 0 {
		t.Fatalf("second evaluation advanced: %v", second.Indexes)
	}
	if b.CurrentIndex != first {
		t.Fatalf("index changed: %d -> %d", first, b.CurrentIndex)
	}
}

func TestEvaluateUnlocksSeveralItemsInOneCall(t *testing.T) {
	start := int64(10)
	b, items := twoItemBundle(2*streamRate*weekPlusMinute, start)
	now := start + 2*weekPlusMinute + 7

	plan := Evaluate(b, items, now, CumulativeCost{})
	want := UnlockPlan{Indexes: []int{0, 1}, Progress: 7}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateRequiresFundsAndTime(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		started   int64
		now       int64
		want      []int
	}{
		{name: "no deposit", principal: 0, started: 0, now: 10 * weekPlusMinute},
		{name: "funded but no time", principal: streamRate * weekPlusMinute, started: 100, now: 100 + weekPlusMinute - 1},
		{name: "time but underfunded", principal: streamRate*weekPlusMinute - 1, started: 100, now: 100 + weekPlusMinute},
		{name: "funded and elapsed", principal: streamRate * weekPlusMinute, started: 100, now: 100 + weekPlusMinute, want: []int{0}},
		{name: "prepaid everything", principal: 2 * streamRate * weekPlusMinute, started: 100, now: 100 + 2*weekPlusMinute, want: []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, items := twoItemBundle(tt.principal, tt.started)
			plan := Evaluate(b, items, tt.now, CumulativeCost{})
			if diff := cmp.Diff(tt.want, plan.Indexes); diff != "" {
				t.Fatalf("indexes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluatePerItemCostModel(t *testing.T) {
	start := int64(100)
	b, items := twoItemBundle(streamRate*weekPlusMinute, start)
	now := start + 2*weekPlusMinute

	cumulative := Evaluate(b, items, now, CumulativeCost{})
	perItem := Evaluate(b, items, now, PerItemCost{})
	if len(cumulative.Indexes) != 1 {
		t.Fatalf("cumulative: want 1 unlock got %v", cumulative.Indexes)
	}
	if len(perItem.Indexes) != 2 {
		t.Fatalf("per item: want 2 unlocks got %v", perItem.Indexes)
	}
}

func TestEvaluateSkipsDestroyedAndComplete(t *testing.T) {
	b, items := twoItemBundle(2*streamRate*weekPlusMinute, 1)
	b.Destroyed = true
	if plan := Evaluate(b, items, 10*weekPlusMinute, nil); len(plan.Indexes) != 0 {
		t.Fatalf("destroyed bundle advanced: %v", plan.Indexes)
	}
	b.Destroyed = false
	b.CurrentIndex = 2
	items[0].Locked, items[1].Locked = false, false
	if plan := Evaluate(b, items, 10*weekPlusMinute, nil); len(plan.Indexes) != 0 {
		t.Fatalf("complete bundle advanced: %v", plan.Indexes)
	}
}

func TestZeroCostZeroDurationItemUnlocksWithoutDeposit(t *testing.T) {
	b := &Bundle{ID: 9, Principal: decimal.Zero}
	items := []LockedItem{{Index: 0, Rate: decimal.Zero, Duration: 0, Locked: true}}
	plan := Evaluate(b, items, 123, CumulativeCost{})
	if diff := cmp.Diff([]int{0}, plan.Indexes); diff != "" {
		t.Fatalf("indexes mismatch (-want +got):\n%s", diff)
	}
}

func TestElapsedBeforeFirstDeposit(t *testing.T) {
	b := &Bundle{}
	if got := Elapsed(b, 1_000_000); got != 0 {
		t.Fatalf("elapsed: want=0 got=%d", got)
	}
}
