package kschedule

// schedulerOptions holds configuration resolved by New.
type schedulerOptions struct {
	mlfqs          bool
	pageAllocator  PageAllocator
	console        ConsoleWriter
	logger         Logger
	switcher       ContextSwitcher
	idleHaltPeriod int // nanoseconds, see idle.go
}

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*schedulerOptions)
}

type optionFunc func(*schedulerOptions)

func (f optionFunc) apply(o *schedulerOptions) { f(o) }

// WithMLFQS selects the MLFQ scheduling discipline instead of round-robin.
func WithMLFQS(enabled bool) Option {
	return optionFunc(func(o *schedulerOptions) { o.mlfqs = enabled })
}

// WithPageAllocator overrides the default never-fails page allocator, e.g.
// to exercise ErrNoMemory in tests.
func WithPageAllocator(a PageAllocator) Option {
	return optionFunc(func(o *schedulerOptions) { o.pageAllocator = a })
}

// WithConsole sets the console collaborator used for statistics printing
// (ThreadDump). It does not change the logger; that is set only by
// WithLogger.
func WithConsole(c ConsoleWriter) Option {
	return optionFunc(func(o *schedulerOptions) { o.console = c })
}

// WithLogger overrides the structured logger (default NoOpLogger).
func WithLogger(l Logger) Option {
	return optionFunc(func(o *schedulerOptions) { o.logger = l })
}

// WithContextSwitcher overrides the context-switch primitive (default: the
// goroutine/channel baton, chanSwitcher).
func WithContextSwitcher(cs ContextSwitcher) Option {
	return optionFunc(func(o *schedulerOptions) { o.switcher = cs })
}

// resolveOptions applies opts over the documented defaults.
func resolveOptions(opts []Option) *schedulerOptions {
	cfg := &schedulerOptions{
		pageAllocator:  bumpAllocator{},
		logger:         NoOpLogger{},
		switcher:       chanSwitcher{},
		idleHaltPeriod: 1_000_000, // 1ms
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
