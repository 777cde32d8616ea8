package queue

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusPosted},
		{StatusApproved, StatusPosted},
		{StatusPosted, StatusPosted},
	}
	for _, tc := range legal {
		if !CanTransition(tc[0], tc[1]) {
			t.Fatalf("expected %s -> %s to be legal", tc[0], tc[1])
		}
	}
	illegal := [][2]Status{
		{StatusPosted, StatusPending},
		{StatusPosted, StatusApproved},
		{StatusRejected, StatusPending},
		{StatusRejected, StatusPosted},
		{StatusApproved, StatusPending},
		{StatusApproved, StatusRejected},
	}
	for _, tc := range illegal {
		if CanTransition(tc[0], tc[1]) {
			t.Fatalf("expected %s -> %s to be illegal", tc[0], tc[1])
		}
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := CheckTransition("9", StatusPosted, StatusPending)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.From != StatusPosted || te.To != StatusPending {
		t.Fatalf("unexpected error fields %+v", te)
	}
}

func TestAvailableActions(t *testing.T) {
	tests := map[Status][]Action{
		StatusPending:  {ActionApprove, ActionReject, ActionPost, ActionEdit, ActionDelete},
		StatusApproved: {ActionPost, ActionEdit, ActionDelete},
		StatusRejected: {ActionEdit, ActionDelete},
		StatusPosted:   {ActionEdit, ActionDelete},
	}
	for status, want := range tests {
		if got := AvailableActions(status); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %v want %v", status, got, want)
		}
	}
	if Allows("archive", StatusPending) {
		t.Fatal("unknown action must not be allowed")
	}
}

func TestPartitionItemsIsIdempotent(t *testing.T) {
	items := []Item{
		{ID: "1", Status: StatusPending},
		{ID: "2", Status: StatusApproved},
		{ID: "3", Status: StatusPosted},
		{ID: "4", Status: StatusRejected},
		{ID: "5", Status: StatusPending},
	}
	first := PartitionItems(items)
	second := PartitionItems(items)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("partitioning the same snapshot twice must be identical")
	}
	if len(first.Pending) != 2 || len(first.Approved) != 1 || len(first.Posted) != 1 || len(first.All) != 5 {
		t.Fatalf("unexpected partition sizes: %+v", first)
	}
	if first.Pending[0].ID != "1" || first.Pending[1].ID != "5" {
		t.Fatal("expected snapshot order preserved")
	}
	if got := first.Counts()[StatusRejected]; got != 1 {
		t.Fatalf("expected 1 rejected, got %d", got)
	}
	if _, ok := first.Find("4"); !ok {
		t.Fatal("expected rejected item in all view")
	}
	if got := first.View(ViewAll); len(got) != 5 {
		t.Fatalf("unexpected all view size %d", len(got))
	}
}
