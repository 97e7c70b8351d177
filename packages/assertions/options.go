package assertions

import (
	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/abdul-hamid-achik/softspec/packages/report"
)

// Option configures a Dispatcher, Accumulator or Registry.
type Option func(*settings)

type settings struct {
	reporter report.Reporter
	logger   logging.Logger
}

func newSettings(opts []Option) settings {
	s := settings{logger: logging.NullLogger{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithReporter sends pass and fail fragments to r. Reporter errors and
// panics are logged at debug level and otherwise ignored.
func WithReporter(r report.Reporter) Option {
	return func(s *settings) {
		s.reporter = r
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		if l == nil {
			l = logging.NullLogger{}
		}
		s.logger = l
	}
}

// attach sends an HTML fragment to the reporter, if any.
func (s settings) attach(fragment string) {
	if s.reporter == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			s.logger.Debug("reporter panicked", logging.Any("panic", p))
		}
	}()
	if err := s.reporter.Attach(fragment, report.MediaHTML); err != nil {
		s.logger.Debug("reporter attach failed", logging.Err(err))
	}
}
