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

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueNameMustNotBeBlank queue names are required and cannot be blank
	ErrQueueNameMustNotBeBlank = errors.New("Queue name must not be blank")
)

func errInvariantViolated(name QueueName, detail string) error {
	return fmt.Errorf("Recovered state violates invariants : queue %q : %s", name, detail)
}

func errOwnerIndexInconsistent(detail string) error {
	return fmt.Errorf("Recovered state violates invariants : owner index : %s", detail)
}
