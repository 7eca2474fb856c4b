//go:build unix

package utils

import "syscall"

// Detach moves the command into its own process group so a terminal Ctrl+C
// reaches only moodcam, which then shuts the child down in order.
func Detach(s *SafeCommand) {
	if s.SysProcAttr == nil {
		s.SysProcAttr = &syscall.SysProcAttr{}
	}
	s.SysProcAttr.Setpgid = true
}
