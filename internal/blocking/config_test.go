package blocking

import "testing"

func TestStoreApplyEnabledUpdatesFastPath(t *testing.T) {
	s := NewStore()
	if s.EnabledFast() {
		t.Fatal("expected disabled by default")
	}

	enabled := true
	if err := s.Apply(Patch{Enabled: &enabled}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !s.EnabledFast() {
		t.Fatal("expected EnabledFast to reflect the new value")
	}
	if !s.Snapshot().Enabled {
		t.Fatal("expected Snapshot().Enabled to reflect the new value")
	}
}

func TestStoreApplyRejectsInvalidScale(t *testing.T) {
	s := NewStore()
	bad := 99
	err := s.Apply(Patch{VocabScale: &bad})
	if err == nil {
		t.Fatal("expected out-of-range vocab scale to be rejected")
	}
	if s.Snapshot().VocabScale != DefaultConfig().VocabScale {
		t.Fatal("expected prior configuration to be left untouched on validation failure")
	}
}

func TestStoreClearResetsButKeepsCapacity(t *testing.T) {
	s := NewStore()
	text := "hello"
	if err := s.Apply(Patch{TextVocab: &text}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := s.setBackground(make([]byte, 16), 4, 4); err != nil {
		t.Fatalf("setBackground: %v", err)
	}
	capBefore := cap(s.bgBytes)

	if err := s.Apply(Patch{Clear: true}); err != nil {
		t.Fatalf("Apply(Clear): %v", err)
	}

	snap := s.Snapshot()
	if snap.TextVocab != "" || snap.BGValid {
		t.Fatalf("expected cleared state, got %+v", snap)
	}
	if cap(s.bgBytes) != capBefore {
		t.Fatal("expected background buffer capacity to survive Clear")
	}
}

func TestStoreApplyTextLengthLimits(t *testing.T) {
	s := NewStore()
	tooLong := make([]byte, MaxVocabLen+1)
	text := string(tooLong)
	if err := s.Apply(Patch{TextVocab: &text}); err == nil {
		t.Fatal("expected oversized text_vocab to be rejected")
	}
}
