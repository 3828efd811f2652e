package tidy

// Trash is the recoverable holding area used instead of permanent deletion.
// Each Put relocates one path into the trash under a fresh unique location,
// so same-named files never collide with existing trash contents.
type Trash interface {
	// Put relocates source into the trash and returns the trash path the
	// entry now lives at.
	Put(source string) (string, error)

	// Restore moves a previously trashed entry back to dest. It refuses to
	// overwrite: an existing dest is an error.
	Restore(trashPath, dest string) error

	// Contains reports whether trashPath is inside this trash and still
	// exists on disk.
	Contains(trashPath string) bool

	// Root returns the trash root directory.
	Root() string
}
