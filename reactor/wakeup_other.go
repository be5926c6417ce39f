//go:build !linux && !darwin

package reactor

func createWakeFd() (int, int, error) { return -1, -1, ErrUnsupported }

func writeWake(int) error { return ErrUnsupported }

func drainWake(int) {}

func closeWakeFd(int, int) error { return ErrUnsupported }
