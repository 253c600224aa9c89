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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"dirpx.dev/dyncast/apis"
)

// ErrInvalidFile is returned when a configuration document cannot be decoded.
var ErrInvalidFile = errors.New("dyncast(config): invalid configuration document")

// File is the on-disk form of apis.Config. Absent keys keep their defaults.
//
//	max_depth: 4
//	implicit: false
//	distinguish_unknown: true
type File struct {
	MaxDepth           *int  `yaml:"max_depth"`
	Implicit           *bool `yaml:"implicit"`
	DistinguishUnknown *bool `yaml:"distinguish_unknown"`
}

// Options converts the keys present in f into functional options.
func (f File) Options() []Option {
	var opts []Option
	if f.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*f.MaxDepth))
	}
	if f.Implicit != nil {
		opts = append(opts, WithImplicit(*f.Implicit))
	}
	if f.DistinguishUnknown != nil {
		opts = append(opts, WithDistinguishUnknown(*f.DistinguishUnknown))
	}
	return opts
}

// Parse decodes a YAML document into an apis.Config. Unknown keys are
// rejected; an empty document yields DefaultConfig.
func Parse(data []byte) (apis.Config, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return apis.Config{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return NewConfig(f.Options()...), nil
}

// Load reads and parses the YAML configuration file at path.
func Load(path string) (apis.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, err
	}
	return Parse(data)
}
