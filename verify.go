package tierarena

import (
	"errors"
	"fmt"
)

// Verify walks every block of every chunk and checks the header magic and
// that the block layout ends exactly at each chunk's high-water mark.
// Unlike the allocation path it reports problems instead of panicking.
func (a *Allocator) Verify() error {
	a.live("verify")
	var errs []error
	for i := range a.arenas {
		ar := &a.arenas[i]
		for c := ar.begin; c != nil; c = c.next {
			if err := c.verify(); err != nil {
				errs = append(errs, fmt.Errorf("%s arena: %w", ar.tier, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *chunk) verify() error {
	if c.used > c.total() {
		return fmt.Errorf("%w: chunk %d high-water mark %d beyond capacity %d",
			ErrCorruptHeader, c.index, c.used, c.total())
	}
	end := 0
	err := c.walk(func(off int, h header) bool {
		end = off + headerSize + h.size()
		return true
	})
	if err != nil {
		return err
	}
	if end != c.used {
		return fmt.Errorf("%w: chunk %d blocks end at %d, high-water mark %d",
			ErrCorruptHeader, c.index, end, c.used)
	}
	return nil
}
