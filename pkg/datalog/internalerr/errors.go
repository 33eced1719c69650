package internalerr

import "errors"

// Sentinel errors for the failure modes shared across the engine packages.
// Callers test with errors.Is; packages wrap these with context via %w.
var (
	// ErrUnsafeClause reports a clause whose head (or a negated body
	// literal) uses a variable that no positive body literal binds.
	ErrUnsafeClause = errors.New("unsafe clause")

	// ErrNoUnifier is the normal failure outcome of unification and
	// matching. It is a control signal inside resolution, not a defect,
	// and never escapes the evaluation entry points.
	ErrNoUnifier = errors.New("no unifier")

	// ErrNonStratified reports a predicate dependency cycle through
	// negation. The whole query is refused rather than answered unsoundly.
	ErrNonStratified = errors.New("program is not stratified")

	// ErrNegativeBody reports a negated body literal handed to the
	// bottom-up evaluator, which handles definite clauses only.
	ErrNegativeBody = errors.New("negated literal in bottom-up clause")

	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)
