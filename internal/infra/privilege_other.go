//go:build !windows

package infra

import "os"

func queryElevation() (bool, error) {
	return os.Geteuid() == 0, nil
}
