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

// OpKind tags an Op variant
type OpKind int

// Op variants - these are the only four mutations the broker knows
const (
	OpAdd OpKind = iota
	OpRemove
	OpAck
	OpSend
)

func (a OpKind) String() string {
	switch a {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpAck:
		return "ack"
	case OpSend:
		return "send"
	default:
		return "UNKNOWN"
	}
}

// Op is one journalled mutation. Exactly one variant's fields are meaningful,
// selected by Kind:
//
//	OpAdd    : Owner, Name
//	OpRemove : Name
//	OpAck    : ID
//	OpSend   : Origin, Name, SendID, Message
type Op struct {
	Kind OpKind

	Owner ConnectionID
	Name  QueueName

	ID MessageID

	Origin  ConnectionID
	SendID  int64
	Message *Message
}

// AddOp builds an Op that creates the named queue.
// owner = NoConnection creates a persistent queue.
func AddOp(owner ConnectionID, name QueueName) *Op {
	return &Op{Kind: OpAdd, Owner: owner, Name: name}
}

// RemoveOp builds an Op that destroys the named queue
func RemoveOp(name QueueName) *Op {
	return &Op{Kind: OpRemove, Name: name}
}

// AckOp builds an Op that removes the identified message from its queue
func AckOp(id MessageID) *Op {
	return &Op{Kind: OpAck, ID: id}
}

// SendOp builds an Op that appends the message to the named queue with the
// pre-allocated sequence id
func SendOp(origin ConnectionID, name QueueName, id int64, message *Message) *Op {
	return &Op{Kind: OpSend, Origin: origin, Name: name, SendID: id, Message: message}
}
