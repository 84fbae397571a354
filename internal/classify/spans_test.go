package classify

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []Span
		n    int
		want []Span
	}{
		{
			name: "fills gaps",
			in:   []Span{{Start: 2, End: 4, Cat: TokenKeyword}},
			n:    6,
			want: []Span{{0, 2, TokenPlain}, {2, 4, TokenKeyword}, {4, 6, TokenPlain}},
		},
		{
			name: "clips and drops overlap",
			in:   []Span{{Start: -1, End: 3, Cat: TokenType}, {Start: 2, End: 9, Cat: TokenString}},
			n:    5,
			want: []Span{{0, 3, TokenType}, {3, 5, TokenString}},
		},
		{
			name: "merges equal neighbours",
			in:   []Span{{0, 1, TokenOperator}, {1, 2, TokenOperator}},
			n:    2,
			want: []Span{{0, 2, TokenOperator}},
		},
		{
			name: "empty input",
			in:   []Span{{0, 1, TokenOperator}},
			n:    0,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in, tc.n)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Normalize: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]Span{{0, 2, TokenPlain}, {2, 3, TokenKeyword}}, 3); err != nil {
		t.Fatalf("valid spans: %v", err)
	}
	if err := Validate([]Span{{0, 2, TokenPlain}, {3, 4, TokenKeyword}}, 4); err == nil {
		t.Fatalf("expected a gap error")
	}
	if err := Validate([]Span{{0, 2, TokenPlain}}, 3); err == nil {
		t.Fatalf("expected a short cover error")
	}
}
