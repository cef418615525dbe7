package domain

import (
	"reflect"
	"testing"
)

func TestCatalogOrder(t *testing.T) {
	want := []PieceID{"P1", "P2", "I3", "L3", "I4", "O4", "L4", "T4", "S4", "F5", "I5", "L5", "P5", "N5", "T5", "U5", "V5", "W5", "X5", "Y5", "Z5"}
	if got := AllPieceIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("AllPieceIDs() = %v, want %v", got, want)
	}
	if got := ScoreForRemaining(AllPieceIDs()); got != 89 {
		t.Fatalf("full catalog score = %d, want 89", got)
	}
}

func TestCatalogSizes(t *testing.T) {
	counts := map[int]int{}
	for _, p := range Catalog() {
		if len(p.Cells) != p.Size {
			t.Errorf("%s: size %d but %d cells", p.ID, p.Size, len(p.Cells))
		}
		counts[p.Size]++
	}
	want := map[int]int{1: 1, 2: 1, 3: 2, 4: 5, 5: 12}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("size histogram = %v, want %v", counts, want)
	}
}

func TestOrientationCounts(t *testing.T) {
	tests := []struct {
		id   PieceID
		want int
	}{
		{"P1", 1}, {"P2", 2}, {"I3", 2}, {"L3", 4},
		{"I4", 2}, {"O4", 1}, {"L4", 8}, {"T4", 4}, {"S4", 4},
		{"F5", 8}, {"I5", 2}, {"L5", 8}, {"P5", 8}, {"N5", 8}, {"T5", 4},
		{"U5", 4}, {"V5", 4}, {"W5", 4}, {"X5", 1}, {"Y5", 8}, {"Z5", 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := len(Orientations(tt.id)); got != tt.want {
				t.Fatalf("len(Orientations(%s)) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestOrientationsNormalizedAndStable(t *testing.T) {
	for _, p := range Catalog() {
		first := OrientationsOf(p)
		second := OrientationsOf(p)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: orientation generation is not idempotent", p.ID)
		}
		if len(first) < 1 || len(first) > 8 {
			t.Fatalf("%s: %d orientations", p.ID, len(first))
		}
		for i, o := range first {
			if !reflect.DeepEqual(normalize(o), o) {
				t.Errorf("%s[%d] not normalized: %v", p.ID, i, o)
			}
			if len(o.Cells()) != p.Size {
				t.Errorf("%s[%d] has %d cells, want %d", p.ID, i, len(o.Cells()), p.Size)
			}
		}
	}
}

func TestFirstOrientationIsBaseShape(t *testing.T) {
	got := Orientations("L3")[0]
	want := Shape{{1, 0}, {1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("first L3 orientation = %v, want %v", got, want)
	}
	// flip of the base comes second
	if got := Orientations("L3")[1]; !reflect.DeepEqual(got, Shape{{0, 1}, {1, 1}}) {
		t.Fatalf("second L3 orientation = %v", got)
	}
}

func TestRotate90(t *testing.T) {
	in := Shape{{1, 1, 1}, {0, 1, 0}}
	want := Shape{{0, 1}, {1, 1}, {0, 1}}
	if got := rotate90(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("rotate90() = %v, want %v", got, want)
	}
}

func TestNormalizeTrims(t *testing.T) {
	in := Shape{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}}
	want := Shape{{1, 0}, {1, 1}}
	if got := normalize(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("normalize() = %v, want %v", got, want)
	}
	if got := normalize(Shape{{0, 0}}); !reflect.DeepEqual(got, Shape{{0}}) {
		t.Fatalf("normalize(empty) = %v", got)
	}
}

func TestIsOrientationOf(t *testing.T) {
	if !IsOrientationOf("I3", Shape{{1}, {1}, {1}}) {
		t.Fatal("vertical I3 should be an orientation")
	}
	if IsOrientationOf("I3", Shape{{1, 1}}) {
		t.Fatal("domino is not an I3 orientation")
	}
	if IsOrientationOf("nope", Shape{{1}}) {
		t.Fatal("unknown piece id accepted")
	}
	if IsOrientationOf("P1", Shape{{1}, {}}) {
		t.Fatal("ragged shape accepted")
	}
}
