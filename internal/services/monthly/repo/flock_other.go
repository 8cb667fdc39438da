//go:build !unix

package repo

// lockFile is a no-op off unix; only the in-process mutex serializes writers
func lockFile(string) (func(), error) { return func() {}, nil }
