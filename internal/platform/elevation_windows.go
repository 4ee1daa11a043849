//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the process token carries administrator
// rights.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// Relaunch starts a fresh detached copy of the executable. The caller
// exits afterwards.
func Relaunch(exePath string, args []string) error {
	cmd := exec.Command(exePath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to relaunch: %w", err)
	}
	return cmd.Process.Release()
}

// RelaunchElevated starts a fresh copy through the UAC "runas" verb.
func RelaunchElevated(exePath string, args []string) error {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	exe, err := windows.UTF16PtrFromString(exePath)
	if err != nil {
		return err
	}
	argLine, err := windows.UTF16PtrFromString(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := windows.ShellExecute(0, verb, exe, argLine, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("failed to relaunch elevated: %w", err)
	}
	return nil
}
