package bqueue

import "testing"

func TestKFarthestQueueInsertOrdering(t *testing.T) {
	q := NewKFarthestQueue(3)

	for _, e := range []Entry{{ObjectID: 1, Value: 5}, {ObjectID: 2, Value: 1}, {ObjectID: 3, Value: 3}} {
		q.Insert(e)
	}

	if q.Bound() != 5 {
		t.Fatalf("expected bound 5, got %v", q.Bound())
	}
	if q.At(2).Value != 1 {
		t.Fatalf("expected smallest entry at tail, got %v", q.At(2).Value)
	}
}

func TestKFarthestQueueRejectsNotSmallerThanBound(t *testing.T) {
	q := NewKFarthestQueue(2)
	q.Insert(Entry{ObjectID: 1, Value: 2})
	q.Insert(Entry{ObjectID: 2, Value: 4})

	if q.Insert(Entry{ObjectID: 3, Value: 4}) {
		t.Fatalf("expected insert of equal-to-bound value to be rejected")
	}
	if q.Insert(Entry{ObjectID: 4, Value: 1}) == false {
		t.Fatalf("expected insert smaller than bound to succeed")
	}
	if q.Bound() != 2 {
		t.Fatalf("expected new bound 2, got %v", q.Bound())
	}
}

func TestNHighestQueueInsertOrdering(t *testing.T) {
	q := NewNHighestQueue(3)

	for _, e := range []Entry{{ObjectID: 1, Value: 5}, {ObjectID: 2, Value: 9}, {ObjectID: 3, Value: 7}} {
		q.Insert(e)
	}

	if q.Cutoff() != 5 {
		t.Fatalf("expected cutoff 5, got %v", q.Cutoff())
	}
	entries := q.Entries()
	if entries[len(entries)-1].Value != 9 {
		t.Fatalf("expected largest entry at tail, got %v", entries[len(entries)-1].Value)
	}
	if q.Filled() != 3 {
		t.Fatalf("expected filled 3, got %d", q.Filled())
	}
}

func TestNHighestQueueRejectsNotLargerThanCutoff(t *testing.T) {
	q := NewNHighestQueue(2)
	q.Insert(Entry{ObjectID: 1, Value: 3})
	q.Insert(Entry{ObjectID: 2, Value: 6})

	if q.Insert(Entry{ObjectID: 3, Value: 3}) {
		t.Fatalf("expected insert of equal-to-cutoff value to be rejected")
	}
	if !q.Insert(Entry{ObjectID: 4, Value: 10}) {
		t.Fatalf("expected insert larger than cutoff to succeed")
	}
	if q.Cutoff() != 6 {
		t.Fatalf("expected new cutoff 6, got %v", q.Cutoff())
	}
}
