//go:build !unix

package utils

// Detach is a no-op where process groups are not available.
func Detach(s *SafeCommand) {}
