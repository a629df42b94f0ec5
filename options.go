package ojo

import (
	"github.com/sirupsen/logrus"

	"github.com/jneem/ojo/linediff"
)

// log is the package-level logger every mutating Repo operation writes to,
// overridable via SetLogger. Package-level rather than threaded through every call,
// same as storage.log and graggle.log.
var log logrus.FieldLogger = logrus.WithField("component", "repo")

// SetLogger overrides the logger used by Repo's mutating operations. Intended for a
// CLI front-end or embedder that wants ojo's operational trace folded into its own
// structured log stream.
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// RepoOption configures a Repo at construction time (Init, Open, or InitTmp).
// Repo has no multi-source configuration need, just a couple of pluggable
// strategies, so functional options rather than a config struct.
type RepoOption func(*Repo)

// WithDiffAlgorithm overrides the line-diff algorithm Repo.Diff uses. The default is
// linediff.Default[string](), the patience/LIS implementation in package linediff.
func WithDiffAlgorithm(algo linediff.Algorithm[string]) RepoOption {
	return func(r *Repo) { r.diffAlgo = algo }
}
