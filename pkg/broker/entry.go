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

import "time"

// Entry is one stored message along with when it was stored and who produced it
type Entry struct {
	// Time is the nanosecond timestamp assigned when the send was applied
	Time int64
	// Origin identifies the producing connection
	Origin ConnectionID
	// Message is the stored envelope
	Message *Message
}

func newEntry(origin ConnectionID, message *Message) *Entry {
	return &Entry{
		Time:    time.Now().UnixNano(),
		Origin:  origin,
		Message: message,
	}
}

// QueueEntry pairs an entry with its message id - used for queue content snapshots
type QueueEntry struct {
	ID    MessageID
	Entry *Entry
}

// TransferItem pairs a message with its id - returned by Transfer
type TransferItem struct {
	ID      MessageID
	Message *Message
}
