// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package broker

import "github.com/Masterminds/semver"

// Descriptor describes a service - its name and semantic version
type Descriptor struct {
	Name    string
	Version *semver.Version
}

// NewDescriptor creates a Descriptor. The version must parse as a semver, otherwise
// the function panics.
func NewDescriptor(name string, version string) *Descriptor {
	return &Descriptor{
		Name:    name,
		Version: semver.MustParse(version),
	}
}

// ServiceDescriptor describes this message switch build
var ServiceDescriptor = NewDescriptor("message-switch", "0.1.0")
