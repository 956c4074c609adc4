//go:build !unix

package proc

import "syscall"

func signalName(sig syscall.Signal) string {
	return sig.String()
}
