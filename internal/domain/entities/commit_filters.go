package entities

// ComparisonKind names which pair of refs a CommitFilters compares.
type ComparisonKind string

const (
	ComparisonTag    ComparisonKind = "tag"
	ComparisonCommit ComparisonKind = "commit"
	ComparisonBranch ComparisonKind = "branch"
)

// CommitFilters optionally restricts a commit listing to the range between two refs.
// At most one pair may be set, and both ends of a pair must be set together.
type CommitFilters struct {
	FromTagName    string
	ToTagName      string
	FromCommitHash string
	ToCommitHash   string
	FromBranchName string
	ToBranchName   string
}

// Comparison is a validated from/to pair.
type Comparison struct {
	Kind ComparisonKind
	From string
	To   string
}

// Validate checks the pair rules without touching the network.
func (f *CommitFilters) Validate() error {
	_, err := f.Comparison()
	return err
}

// Comparison returns the single requested pair, nil when no pair is set,
// or a ValidationError when the filters are inconsistent.
func (f *CommitFilters) Comparison() (*Comparison, error) {
	if f == nil {
		return nil, nil //nolint:nilnil // no filters means no comparison
	}

	pairs := []struct {
		kind     ComparisonKind
		from, to string
		names    [2]string
	}{
		{ComparisonTag, f.FromTagName, f.ToTagName, [2]string{"fromTagName", "toTagName"}},
		{ComparisonCommit, f.FromCommitHash, f.ToCommitHash, [2]string{"fromCommitHash", "toCommitHash"}},
		{ComparisonBranch, f.FromBranchName, f.ToBranchName, [2]string{"fromBranchName", "toBranchName"}},
	}

	var found *Comparison
	for _, pair := range pairs {
		if (pair.from == "") != (pair.to == "") {
			return nil, NewValidationError("%s and %s must be defined together", pair.names[0], pair.names[1])
		}
		if pair.from == "" {
			continue
		}
		if found != nil {
			return nil, NewValidationError("only one type of comparison can be used at a time")
		}
		found = &Comparison{Kind: pair.kind, From: pair.from, To: pair.to}
	}
	return found, nil
}
