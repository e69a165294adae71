//go:build !linux

package crosscheck

// platformMemorySources has no extra readings beyond the portable ones here.
func platformMemorySources() []Source {
	return nil
}
