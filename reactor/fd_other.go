//go:build !linux && !darwin

package reactor

func isRegistered(error) bool { return false }

func isGone(error) bool { return false }
