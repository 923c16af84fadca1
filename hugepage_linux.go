package epsilon

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func adviseHugePages(region []byte) error {
	if err := unix.Madvise(region, unix.MADV_HUGEPAGE); err != nil {
		return fmt.Errorf("epsilon: madvise hugepage: %w", err)
	}
	return nil
}
