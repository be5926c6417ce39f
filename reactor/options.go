// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"github.com/joeycumines/logiface"
)

// defaultMaxEvents is the poll batch size when WithMaxEvents is not given.
const defaultMaxEvents = 256

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger    *logiface.Logger[logiface.Event]
	maxEvents int
}

// Option configures a Loop instance.
type Option interface {
	applyLoop(*loopOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (o *optionImpl) applyLoop(opts *loopOptions) error {
	return o.applyLoopFunc(opts)
}

// WithLogger sets the structured logger used for diagnostics, such as poll
// failures. A nil logger disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMaxEvents sets the maximum number of readiness events retrieved from
// the kernel per poll. Values <= 0 select the default (256).
func WithMaxEvents(n int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if n <= 0 {
			n = defaultMaxEvents
		}
		opts.maxEvents = n
		return nil
	}}
}

// resolveOptions applies Option instances to loopOptions.
func resolveOptions(opts []Option) (*loopOptions, error) {
	cfg := &loopOptions{
		maxEvents: defaultMaxEvents,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
