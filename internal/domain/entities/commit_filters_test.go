package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

func TestCommitFiltersComparison(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filters  *entities.CommitFilters
		expected *entities.Comparison
		errText  string
	}{
		{name: "nil filters", filters: nil},
		{name: "empty filters", filters: &entities.CommitFilters{}},
		{
			name:     "tag pair",
			filters:  &entities.CommitFilters{FromTagName: "v1", ToTagName: "v2"},
			expected: &entities.Comparison{Kind: entities.ComparisonTag, From: "v1", To: "v2"},
		},
		{
			name:     "commit pair",
			filters:  &entities.CommitFilters{FromCommitHash: "a", ToCommitHash: "b"},
			expected: &entities.Comparison{Kind: entities.ComparisonCommit, From: "a", To: "b"},
		},
		{
			name:     "branch pair",
			filters:  &entities.CommitFilters{FromBranchName: "dev", ToBranchName: "main"},
			expected: &entities.Comparison{Kind: entities.ComparisonBranch, From: "dev", To: "main"},
		},
		{
			name:    "half tag pair",
			filters: &entities.CommitFilters{ToTagName: "v2"},
			errText: "fromTagName and toTagName must be defined together",
		},
		{
			name:    "half commit pair",
			filters: &entities.CommitFilters{FromCommitHash: "a"},
			errText: "fromCommitHash and toCommitHash must be defined together",
		},
		{
			name:    "half branch pair",
			filters: &entities.CommitFilters{FromBranchName: "dev"},
			errText: "fromBranchName and toBranchName must be defined together",
		},
		{
			name: "two pairs",
			filters: &entities.CommitFilters{
				FromTagName: "v1", ToTagName: "v2", FromBranchName: "dev", ToBranchName: "main",
			},
			errText: "only one type of comparison can be used at a time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			comparison, err := tt.filters.Comparison()

			// then
			if tt.errText != "" {
				var validationErr *entities.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.errText, validationErr.Reason)
				assert.Nil(t, comparison)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, comparison)
		})
	}
}
