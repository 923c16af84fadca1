//go:build darwin || freebsd

package epsilon

// Transparent huge pages are a Linux feature; elsewhere the flag is ignored.
func adviseHugePages([]byte) error { return nil }
