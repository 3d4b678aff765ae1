//go:build unix && !linux

package osmem

const mapNoReserve = 0
