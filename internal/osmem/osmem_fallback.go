//go:build !unix

package osmem

func defaultSource() Source { return Heap{} }
