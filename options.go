package bfjit

import (
	"fmt"
	"io"

	"github.com/jcorbin/bfjit/internal/tape"
)

// Option customizes compiled programs.
type Option interface{ apply(conf *config) }

type config struct {
	tapeSize int
	logfn    func(mess string, args ...interface{})
	tee      io.Writer
}

var defaultConfig = config{
	tapeSize: tape.DefaultSize,
}

// Options combines several options into one; nil options are skipped.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, opt)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

// WithTapeSize sets the number of tape cells allocated for every run; values
// less than 1 select the default of 30000.
func WithTapeSize(size int) Option { return tapeSizeOption(size) }

// WithLogf enables trace logging of compilation and execution.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return logfnOption(logfn) }

// WithTee copies all program output to w, in addition to the run's output.
func WithTee(w io.Writer) Option { return teeOption{w} }

type options []Option
type tapeSizeOption int
type logfnOption func(mess string, args ...interface{})
type teeOption struct{ io.Writer }

func (opts options) apply(conf *config) {
	for _, opt := range opts {
		opt.apply(conf)
	}
}

func (size tapeSizeOption) apply(conf *config) {
	if size < 1 {
		conf.tapeSize = tape.DefaultSize
	} else {
		conf.tapeSize = int(size)
	}
}

func (logfn logfnOption) apply(conf *config) { conf.logfn = logfn }

func (tee teeOption) apply(conf *config) { conf.tee = tee.Writer }

func (conf config) logf(mark, mess string, args ...interface{}) {
	if conf.logfn == nil {
		return
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	conf.logfn("%v %v", mark, mess)
}
