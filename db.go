package ojo

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jneem/ojo/storage"
)

// masterBranch is the name every newly-created repository's default branch gets.
const masterBranch = "master"

// dbWire is the single opaque blob a repository's database round-trips through:
// current branch name plus the entire Storage (contents, branches,
// graggles, patches, branch_patches, patch_deps, patch_rev_deps; the latter two
// rebuilt from each patch's own Deps on decode, not persisted directly).
type dbWire struct {
	CurrentBranch string          `yaml:"current_branch"`
	Storage       *storage.Storage `yaml:"storage"`
}

// repoDir returns the directory, under root, where ojo's data is stored.
func repoDir(root string) string {
	return filepath.Join(root, ".ojo")
}

// dbPath returns the path of the database file within root's .ojo directory.
func dbPath(root string) string {
	return filepath.Join(repoDir(root), "db")
}

// newRepo builds an empty Repo (one "master" branch, no patches) rooted at dir,
// applying opts.
func newRepo(dir string, opts []RepoOption) *Repo {
	s := storage.New()
	master := s.AllocateInode()
	s.SetInode(masterBranch, master)

	r := &Repo{
		RootDir:       dir,
		RepoDir:       repoDir(dir),
		DbPath:        dbPath(dir),
		CurrentBranch: masterBranch,
		storage:       s,
		diffAlgo:      defaultDiffAlgorithm(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init creates a fresh repository at dir, which should already exist as a directory.
// It fails with an ErrKindRepoExists Error if dir already has a repository.
func Init(dir string, opts ...RepoOption) (*Repo, error) {
	if _, err := os.Stat(dbPath(dir)); err == nil {
		return nil, newErr(ErrKindRepoExists, ErrRepoExists, "ojo: init %q", dir)
	}
	return newRepo(dir, opts), nil
}

// InitTmp creates a repository that lives only in memory: Write returns an error,
// since there's no path to persist to. Useful for tests and scratch usage.
func InitTmp(opts ...RepoOption) *Repo {
	return newRepo("", opts)
}

// Open reads an existing repository rooted at dir.
func Open(dir string, opts ...RepoOption) (*Repo, error) {
	data, err := os.ReadFile(dbPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr(ErrKindRepoNotFound, ErrRepoNotFound, "ojo: open %q", dir)
		}
		return nil, newErr(ErrKindIO, ErrIO, "ojo: open %q: %v", dir, err)
	}

	var db dbWire
	db.Storage = storage.New()
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, newErr(ErrKindDbCorruption, ErrDbCorruption, "ojo: open %q: decoding database: %v", dir, err)
	}

	r := &Repo{
		RootDir:       dir,
		RepoDir:       repoDir(dir),
		DbPath:        dbPath(dir),
		CurrentBranch: db.CurrentBranch,
		storage:       db.Storage,
		diffAlgo:      defaultDiffAlgorithm(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Write persists r to its DbPath. Any modifications made since Init/Open (or since
// the last Write) become permanent. Fails if r was created via InitTmp.
func (r *Repo) Write() error {
	if r.RootDir == "" {
		return newErr(ErrKindIO, ErrIO, "ojo: write: repository has no backing path (created via InitTmp)")
	}
	if err := os.MkdirAll(r.RepoDir, 0o755); err != nil {
		return newErr(ErrKindIO, ErrIO, "ojo: write: creating %q: %v", r.RepoDir, err)
	}

	db := dbWire{CurrentBranch: r.CurrentBranch, Storage: r.storage}
	out, err := yaml.Marshal(&db)
	if err != nil {
		return newErr(ErrKindDbCorruption, ErrDbCorruption, "ojo: write: encoding database: %v", err)
	}
	if err := os.WriteFile(r.DbPath, out, 0o644); err != nil {
		return newErr(ErrKindIO, ErrIO, "ojo: write: %v", err)
	}
	return nil
}
