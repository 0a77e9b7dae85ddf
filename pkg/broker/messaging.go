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
	"fmt"
	"strings"
)

// QueueName represents the name of a queue
type QueueName string

// Validate checks that the queue name is not blank
func (a QueueName) Validate() error {
	if strings.TrimSpace(string(a)) == "" {
		return ErrQueueNameMustNotBeBlank
	}
	return nil
}

// HasPrefix returns true if the queue name begins with prefix
func (a QueueName) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(a), prefix)
}

// ConnectionID identifies a client connection. The broker treats it as opaque -
// it is recorded as the origin of each message and as the owner of transient queues.
type ConnectionID string

// NoConnection means no connection, e.g., a queue with owner = NoConnection is persistent
const NoConnection ConnectionID = ""

// MessageID identifies a message within a queue. The sequence is a per-queue
// monotonically increasing 64-bit counter that is never reused, even across removals.
type MessageID struct {
	Name QueueName
	ID   int64
}

func (a MessageID) String() string {
	return fmt.Sprintf("%s:%d", a.Name, a.ID)
}

// Kind indicates whether a message is a request or a response
type Kind int

// Kind enum values
const (
	Request Kind = iota
	Response
)

func (a Kind) String() string {
	switch a {
	case Request:
		return "request"
	case Response:
		return "response"
	default:
		return "UNKNOWN"
	}
}

// Message is the message envelope. The broker stores the payload verbatim and
// never inspects it - the routing hints are for the communicating clients.
type Message struct {
	// Data is the opaque message payload
	Data []byte
	// Kind indicates request vs response
	Kind Kind
	// ReplyTo names the queue to send the reply to - set on requests
	ReplyTo QueueName
	// RequestID is the id of the request being answered - set on responses
	RequestID *MessageID
}
