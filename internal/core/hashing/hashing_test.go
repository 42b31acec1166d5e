package hashing

import "testing"

// These vectors pin the bucketing algorithm. If any of them fail, the
// rollout contract with existing callers has been broken.
func TestBucketConformanceVectors(t *testing.T) {
	tests := []struct {
		id     string
		bucket int
	}{
		{"user-123", 3},
		{"anon", 7},
		{"", 61},
		{"alice", 79},
		{"bob", 44},
		{"user-42", 99},
		{"welcome_banner", 2},
		{"dark_mode", 73},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Bucket(tt.id); got != tt.bucket {
				t.Errorf("Bucket(%q) = %d, want %d", tt.id, got, tt.bucket)
			}
		})
	}
}

func TestBucketIsDeterministic(t *testing.T) {
	first := Bucket("user-123")
	for i := 0; i < 100; i++ {
		if got := Bucket("user-123"); got != first {
			t.Fatalf("Bucket returned %d on repeat call, want %d", got, first)
		}
	}
}

func TestBucketRange(t *testing.T) {
	ids := []string{"", "a", "user-1", "user-2", "user-3", "some-very-long-identifier-with-punctuation!@#", "anon"}
	for _, id := range ids {
		b := Bucket(id)
		if b < 0 || b >= 100 {
			t.Errorf("Bucket(%q) = %d, out of range [0,100)", id, b)
		}
	}
}

func TestFingerprint(t *testing.T) {
	got := Fingerprint([]byte(`{"id":"1","key":"welcome_banner"}`))
	if got != "f6877b6d" {
		t.Errorf("Fingerprint = %q, want %q", got, "f6877b6d")
	}
	if len(got) != 8 {
		t.Errorf("Fingerprint length = %d, want 8", len(got))
	}

	other := Fingerprint([]byte(`{"id":"2","key":"welcome_banner"}`))
	if other == got {
		t.Error("expected differing inputs to produce differing fingerprints")
	}
}
