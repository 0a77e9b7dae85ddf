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

package logging

import (
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger fields
const (
	PACKAGE = "pkg"
	TYPE    = "type"
	FUNC    = "func"
	NAME    = "name"
	EVENT   = "event"
	ID      = "id"
	QUEUE   = "queue"
	OWNER   = "owner"
	OP      = "op"
)

// PackagePath represents a go package path
type PackagePath string

// NoPackage represents the "" package, which is for predeclared types and unnamed types
const NoPackage PackagePath = ""

// Event is a structured log event name, logged under the "event" field
type Event string

// Log adds the event to the log context
func (a Event) Log(event *zerolog.Event) *zerolog.Event {
	return event.Str(EVENT, string(a))
}

// NewPackageLogger returns a new logger with pkg={pkg}
// where {pkg} is o's package path
// o must be for a named type because the package path can only be obtained for named types.
// The pattern is to declare an empty struct per package, e.g., type pkgobject struct{}
func NewPackageLogger(o interface{}) zerolog.Logger {
	pkg := ObjectPackage(o)
	if pkg == NoPackage {
		panic("NewPackageLogger only supports objects for named types")
	}
	return log.With().Str(PACKAGE, string(pkg)).Logger()
}

// ObjectPackage returns the package that the specified object belongs to.
// It only supports named types or pointers to named types.
// If the type was predeclared (string, error) or unnamed (struct{}, []int, *struct{}),
// then the package path will be the empty string. Pointers are dereferenced, so *T
// yields the package of T.
func ObjectPackage(o interface{}) PackagePath {
	return typePackage(reflect.TypeOf(o))
}

func typePackage(t reflect.Type) PackagePath {
	switch {
	case t.Kind() == reflect.Ptr:
		return typePackage(t.Elem())
	default:
		return PackagePath(t.PkgPath())
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
