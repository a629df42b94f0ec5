package ojo

import "errors"

// Sentinel errors identifying the broad category of an operation failure. Use
// errors.Is against these rather than comparing strings; the wrapped error (via
// fmt.Errorf's %w) carries the offending branch name, node id, or patch id.
var (
	// ErrUnknownBranch means an operation referenced a branch that doesn't exist.
	ErrUnknownBranch = errors.New("ojo: unknown branch")
	// ErrBranchExists means an operation tried to create a branch that already exists.
	ErrBranchExists = errors.New("ojo: branch already exists")
	// ErrCurrentBranch means an operation tried to delete the branch currently checked out.
	ErrCurrentBranch = errors.New("ojo: cannot delete the current branch")

	// ErrUnknownPatch means an operation referenced a patch id the repository has never seen.
	ErrUnknownPatch = errors.New("ojo: unknown patch")
	// ErrUnknownNode means a patch referenced a node that isn't new and isn't covered by a dependency.
	ErrUnknownNode = errors.New("ojo: unknown node")
	// ErrMissingDep means a patch declared a dependency the repository doesn't have registered.
	ErrMissingDep = errors.New("ojo: missing patch dependency")

	// ErrPatchCollision means two different patches hashed to the same PatchId.
	ErrPatchCollision = errors.New("ojo: patch id collision")
	// ErrIdMismatch means a patch's recomputed content hash disagreed with its expected id.
	ErrIdMismatch = errors.New("ojo: patch id mismatch")

	// ErrNotOrdered means a branch's data does not represent a totally ordered file.
	ErrNotOrdered = errors.New("ojo: branch is not a totally ordered file")

	// ErrRepoExists means Init was called on a directory that already has a repository.
	ErrRepoExists = errors.New("ojo: repository already exists")
	// ErrRepoNotFound means Open couldn't find a repository at the given path.
	ErrRepoNotFound = errors.New("ojo: no repository found")
	// ErrDbCorruption means the on-disk database could not be parsed as expected.
	ErrDbCorruption = errors.New("ojo: database corruption")

	// ErrIO means a filesystem operation (opening or writing a repository's database)
	// failed.
	ErrIO = errors.New("ojo: i/o error")
)
