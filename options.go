package epsilon

import (
	"fmt"
	"log/slog"

	"github.com/oy3o/epsilon/internal/options"
)

type config struct {
	logger     *slog.Logger
	bufferSize int
	flags      Flags
}

// Option configures an entry point.
type Option = options.Option[*config]

// WithLogger sets the logger for advisories and backing-store events.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = l
	})
}

// WithBufferSize sets the buffer size used when wrapping unbuffered readers
// and writers.
func WithBufferSize(size int) Option {
	return options.New(func(c *config) error {
		if size < 16 {
			return fmt.Errorf("%w: %d", ErrSizeTooSmall, size)
		}
		c.bufferSize = size
		return nil
	})
}

// WithFlags sets the memory-mapping flags of the mapped backing stores.
func WithFlags(f Flags) Option {
	return options.NoError(func(c *config) {
		c.flags = f
	})
}

func newConfig(opts []Option) (*config, error) {
	c := &config{bufferSize: BUFFER_SIZE}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}
