// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package fibersched

import (
	"errors"
	"net"

	"github.com/joeycumines/go-fibersched/reactor"
	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger      *logiface.Logger[logiface.Event]
	loop        *reactor.Loop
	resolver    *net.Resolver
	reactorOpts []reactor.Option
}

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithLogger sets the structured logger. It is also passed to the reactor
// when the scheduler creates its own loop. A nil logger disables logging
// (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithReactor makes the scheduler drive an existing loop instead of
// creating its own. The scheduler will not close a loop it did not create.
// The loop must not be driven by anything else while the scheduler is open.
func WithReactor(loop *reactor.Loop) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if loop == nil {
			return errors.New("fibersched: nil reactor")
		}
		opts.loop = loop
		return nil
	}}
}

// WithReactorOptions passes options through to reactor.New, when the
// scheduler creates its own loop.
func WithReactorOptions(options ...reactor.Option) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.reactorOpts = append(opts.reactorOpts, options...)
		return nil
	}}
}

// WithResolver sets the resolver used by AddressResolve. Defaults to
// net.DefaultResolver.
func WithResolver(resolver *net.Resolver) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.resolver = resolver
		return nil
	}}
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.resolver == nil {
		cfg.resolver = net.DefaultResolver
	}
	return cfg, nil
}
