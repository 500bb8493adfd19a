package pool

import "testing"

func TestRowPoolGetLength(t *testing.T) {
	rp := NewRowPool(4)

	tests := []struct {
		name string
		n    int
	}{
		{"within capacity", 3},
		{"exact capacity", 4},
		{"grows", 64},
		{"empty", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := rp.Get(tc.n)
			if len(*row) != tc.n {
				t.Errorf("expected length %d, got %d", tc.n, len(*row))
			}
			rp.Put(row)
			if len(*row) != 0 {
				t.Errorf("expected length 0 after Put, got %d", len(*row))
			}
		})
	}
}
