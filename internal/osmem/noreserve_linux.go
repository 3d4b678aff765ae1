//go:build linux

package osmem

import "golang.org/x/sys/unix"

const mapNoReserve = unix.MAP_NORESERVE
