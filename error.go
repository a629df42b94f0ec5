package ojo

import "fmt"

// ErrorKind classifies an Error so callers can switch on kind instead of matching
// error strings.
type ErrorKind int

const (
	// ErrKindUnknownBranch: unknown resource, a branch name the repo has never seen.
	ErrKindUnknownBranch ErrorKind = iota
	// ErrKindBranchExists: already-exists, CreateBranch/CloneBranch's target branch.
	ErrKindBranchExists
	// ErrKindCurrentBranch: structural, DeleteBranch targeted the checked-out branch.
	ErrKindCurrentBranch
	// ErrKindUnknownPatch: unknown resource, a patch id the repo has never seen.
	ErrKindUnknownPatch
	// ErrKindUnknownNode: integrity violation, a patch references a node that is
	// neither newly introduced nor covered by a declared dependency.
	ErrKindUnknownNode
	// ErrKindMissingDep: integrity violation, a patch declares a dependency the repo
	// doesn't have registered.
	ErrKindMissingDep
	// ErrKindPatchCollision: integrity violation, two different patches hashed to the
	// same PatchId.
	ErrKindPatchCollision
	// ErrKindIdMismatch: integrity violation, a patch's recomputed hash disagreed
	// with the id it was opened under.
	ErrKindIdMismatch
	// ErrKindNotOrdered: shape error, a linearization was required but the graggle
	// has cycles or diamonds.
	ErrKindNotOrdered
	// ErrKindRepoExists: already-exists, Init targeted a path with a repo already in it.
	ErrKindRepoExists
	// ErrKindRepoNotFound: unknown resource, Open couldn't find a repo at the path.
	ErrKindRepoNotFound
	// ErrKindDbCorruption: serialization error, the database blob didn't parse.
	ErrKindDbCorruption
	// ErrKindIO: I/O error, reading or writing the database file failed.
	ErrKindIO
)

// Error wraps a sentinel error (see errors.go) with the ErrorKind it belongs to, so
// callers can either errors.Is against the sentinel or switch on Kind.
type Error struct {
	Kind ErrorKind
	err  error
}

// Error implements the error interface by deferring to the wrapped sentinel error.
func (e *Error) Error() string { return e.err.Error() }

// Unwrap exposes the wrapped sentinel error to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// newErr builds an *Error of kind, wrapping sentinel with additional context via
// fmt.Errorf's %w verb.
func newErr(kind ErrorKind, sentinel error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: fmt.Errorf(format+": %w", append(args, sentinel)...)}
}
