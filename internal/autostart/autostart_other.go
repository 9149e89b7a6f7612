//go:build !windows

package autostart

func Enable(string) error     { return ErrUnsupported }
func Disable() error          { return ErrUnsupported }
func Status() (string, error) { return "", ErrUnsupported }
