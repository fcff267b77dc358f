package router

import "github.com/sirupsen/logrus"

// Option represents router option
type Option func(r *Router)

// WithServerInfo sets server identity reported by initialize
func WithServerInfo(name, version string) Option {
	return func(r *Router) {
		if name != "" {
			r.info.Name = name
		}
		if version != "" {
			r.info.Version = version
		}
	}
}

// WithLenientList makes a failed tools/list return an empty catalog instead of an error
func WithLenientList(lenient bool) Option {
	return func(r *Router) {
		r.lenient = lenient
	}
}

// WithLogger sets logger
func WithLogger(logger *logrus.Entry) Option {
	return func(r *Router) {
		r.logger = logger
	}
}
