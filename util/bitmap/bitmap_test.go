package bitmap

import "testing"

func TestSetRange(t *testing.T) {
	bm := NewBits(32)
	if err := bm.SetRange(0, 5); err != nil {
		t.Fatalf("SetRange: %v", err)
	}
	for i := 0; i < 5; i++ {
		set, err := bm.IsSet(i)
		if err != nil || !set {
			t.Fatalf("bit %d: set=%v err=%v, want set", i, set, err)
		}
	}
	set, err := bm.IsSet(5)
	if err != nil || set {
		t.Fatalf("bit 5: set=%v err=%v, want free", set, err)
	}
}

func TestCountSet(t *testing.T) {
	bm := NewBits(16)
	_ = bm.Set(0)
	_ = bm.Set(3)
	_ = bm.Set(15)
	if got := bm.CountSet(); got != 3 {
		t.Fatalf("CountSet() = %d, want 3", got)
	}
}

func TestFirstFreeAfterSetRange(t *testing.T) {
	bm := NewBits(16)
	_ = bm.SetRange(0, 8)
	if got := bm.FirstFree(0); got != 8 {
		t.Fatalf("FirstFree(0) = %d, want 8", got)
	}
}
