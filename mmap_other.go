//go:build !linux && !darwin && !freebsd

package epsilon

import "os"

func mmapAnon(int, Flags) ([]byte, error) { return nil, ErrMmapUnsupported }

func mmapFile(*os.File, int, Flags) ([]byte, error) { return nil, ErrMmapUnsupported }

func protectReadOnly([]byte) error { return ErrMmapUnsupported }

func munmap([]byte) error { return nil }
