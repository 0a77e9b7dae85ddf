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

package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrFilePathIsBlank the ring file path is required
	ErrFilePathIsBlank = errors.New("Ring file path must not be blank")
	// ErrCapacityMustBePositive the ring capacity is required
	ErrCapacityMustBePositive = errors.New("Ring capacity must be > 0")
	// ErrRingFull the ring has no room left for new records
	ErrRingFull = errors.New("Ring is full")
	// ErrJournalClosed the journal is closed and accepts no more appends
	ErrJournalClosed = errors.New("Journal is closed")
	// ErrJournalAlreadyStarted Start was invoked more than once
	ErrJournalAlreadyStarted = errors.New("Journal is already started")
	// ErrJournalNotStarted Append was invoked before Start
	ErrJournalNotStarted = errors.New("Journal is not started")
)

func errRingFilePathIsDir(filePath string) error {
	return fmt.Errorf("The ring file path must point to a file, not a directory : %s", filePath)
}
