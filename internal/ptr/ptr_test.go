package ptr_test

import (
	"testing"

	"github.com/mvrdal/trena/internal/ptr"
)

func TestRef(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s := "test"
		p := ptr.Ref(s)

		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}

		if *p != s {
			t.Errorf("Expected %q, got %q", s, *p)
		}

		// Verify that modifying the original value doesn't affect the pointer
		s = "modified"
		if *p == s {
			t.Errorf("Pointer value should not change when original value is modified")
		}
	})

	t.Run("float64", func(t *testing.T) {
		f := 1.5
		p := ptr.Ref(f)

		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}

		if *p != f {
			t.Errorf("Expected %f, got %f", f, *p)
		}
	})
}
