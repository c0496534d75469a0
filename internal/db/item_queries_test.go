package db

import (
	"testing"

	"finchwire.dev/newsvet/internal/news"
)

func TestIsDuplicateResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		result news.ValidationResult
		want   bool
	}{
		{
			name:   "valid item",
			result: news.ValidationResult{IsValid: true},
			want:   false,
		},
		{
			name: "duplicate rejection",
			result: news.ValidationResult{
				IsValid:      false,
				AppliedRules: []string{"duplicate_detection"},
			},
			want: true,
		},
		{
			name: "rule rejection",
			result: news.ValidationResult{
				IsValid:      false,
				AppliedRules: []string{"spam_detection", "title_length"},
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDuplicateResult(tc.result); got != tc.want {
				t.Fatalf("isDuplicateResult = %v, want %v", got, tc.want)
			}
		})
	}
}
