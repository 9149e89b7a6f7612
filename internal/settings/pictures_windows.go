//go:build windows

package settings

import "golang.org/x/sys/windows"

func picturesDir() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Pictures, windows.KF_FLAG_DEFAULT)
}
