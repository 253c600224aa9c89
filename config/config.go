/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"dirpx.dev/dyncast/apis"
)

const (
	// DefaultMaxDepth represents the default for MaxDepth.
	// Real wrapper stacks are two or three layers deep; 8 leaves headroom.
	DefaultMaxDepth = 8
	// DefaultImplicit represents the default for Implicit.
	// Casting is limited to registered pairs unless enabled.
	DefaultImplicit = false
	// DefaultDistinguishUnknown represents the default for DistinguishUnknown.
	DefaultDistinguishUnknown = true
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxDepth is valid.
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxDepth:           DefaultMaxDepth,
		Implicit:           DefaultImplicit,
		DistinguishUnknown: DefaultDistinguishUnknown,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(depth int) Option {
	return func(c *apis.Config) {
		if depth <= 0 {
			c.MaxDepth = DefaultMaxDepth
			return
		}
		c.MaxDepth = depth
	}
}

// WithImplicit sets the Implicit option.
func WithImplicit(implicit bool) Option {
	return func(c *apis.Config) {
		c.Implicit = implicit
	}
}

// WithDistinguishUnknown sets the DistinguishUnknown option.
func WithDistinguishUnknown(distinguish bool) Option {
	return func(c *apis.Config) {
		c.DistinguishUnknown = distinguish
	}
}
