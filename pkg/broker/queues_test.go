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

package broker_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/Zhengchai/message-switch/pkg/broker"
	"github.com/Zhengchai/message-switch/pkg/journal"
)

const BASE_RING_PATH = "./testdata/temp/broker_test_"

func ringFile(t *testing.T, name string) string {
	t.Helper()
	if err := os.MkdirAll("./testdata/temp", 0755); err != nil {
		t.Fatal(err)
	}
	path := BASE_RING_PATH + name
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return path
}

func openQueues(t *testing.T, name string) *broker.Queues {
	t.Helper()
	queues, err := broker.Open(ringFile(t, name), 1000)
	if err != nil {
		t.Fatal(err)
	}
	return queues
}

func request(data string) *broker.Message {
	return &broker.Message{Kind: broker.Request, ReplyTo: "replies", Data: []byte(data)}
}

func TestQueues_BasicRoundTrip(t *testing.T) {
	queues := openQueues(t, "TestQueues_BasicRoundTrip")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}

	id, err := queues.Send("originA", "q", request("m1"))
	if err != nil {
		t.Fatal(err)
	}
	if id == nil || id.Name != "q" || id.ID != 0 {
		t.Fatalf("the first send should allocate id 0 : %v", id)
	}

	items := queues.Transfer(-1, []broker.QueueName{"q"})
	if len(items) != 1 {
		t.Fatalf("transfer should return the message : %v", items)
	}
	if items[0].ID != *id || !bytes.Equal(items[0].Message.Data, []byte("m1")) {
		t.Errorf("transfer returned the wrong message : %+v", items[0])
	}

	if err := queues.Ack(*id); err != nil {
		t.Fatal(err)
	}
	if items := queues.Transfer(-1, []broker.QueueName{"q"}); len(items) != 0 {
		t.Errorf("the queue should be empty after ack : %v", items)
	}
}

func TestQueues_SendDropsOnMissingQueue(t *testing.T) {
	queues := openQueues(t, "TestQueues_SendDropsOnMissingQueue")
	defer queues.Close()

	id, err := queues.Send("originA", "q", request("m1"))
	if err != nil {
		t.Fatal(err)
	}
	if id != nil {
		t.Errorf("send into a missing queue should be dropped : %v", id)
	}
	if names := queues.List(""); len(names) != 0 {
		t.Errorf("sending must not create queues : %v", names)
	}
}

func TestQueues_OwnerReap(t *testing.T) {
	queues := openQueues(t, "TestQueues_OwnerReap")
	defer queues.Close()

	if err := queues.Add("c", "t1"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add("c", "t2"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add(broker.NoConnection, "p"); err != nil {
		t.Fatal(err)
	}

	owned := queues.OwnedQueues("c")
	if len(owned) != 2 || owned[0] != "t1" || owned[1] != "t2" {
		t.Fatalf("c should own t1 and t2 : %v", owned)
	}

	if err := queues.ReapOwner("c"); err != nil {
		t.Fatal(err)
	}

	names := queues.List("")
	if len(names) != 1 || names[0] != "p" {
		t.Errorf("only the persistent queue should survive : %v", names)
	}
	if owned := queues.OwnedQueues("c"); len(owned) != 0 {
		t.Errorf("c should own nothing after the reap : %v", owned)
	}
}

func TestQueues_MonotonicIDsAcrossAck(t *testing.T) {
	queues := openQueues(t, "TestQueues_MonotonicIDsAcrossAck")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 3; i++ {
		id, err := queues.Send("o", "q", request("m"))
		if err != nil {
			t.Fatal(err)
		}
		if id.ID != i {
			t.Fatalf("ids should be dense and monotonic : %d != %d", id.ID, i)
		}
	}

	if err := queues.Ack(broker.MessageID{Name: "q", ID: 1}); err != nil {
		t.Fatal(err)
	}

	id, err := queues.Send("o", "q", request("m"))
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != 3 {
		t.Errorf("ids are never reused - the next id should be 3 : %d", id.ID)
	}
}

func TestQueues_AddRemoveAckAreIdempotent(t *testing.T) {
	queues := openQueues(t, "TestQueues_AddRemoveAckAreIdempotent")
	defer queues.Close()

	if err := queues.Add("c", "q"); err != nil {
		t.Fatal(err)
	}
	// adding again with a different owner changes nothing
	if err := queues.Add("other", "q"); err != nil {
		t.Fatal(err)
	}
	if owned := queues.OwnedQueues("c"); len(owned) != 1 {
		t.Errorf("q should still be owned by c : %v", owned)
	}
	if owned := queues.OwnedQueues("other"); len(owned) != 0 {
		t.Errorf("the second add should have been a no-op : %v", owned)
	}

	if err := queues.Ack(broker.MessageID{Name: "q", ID: 99}); err != nil {
		t.Fatal(err)
	}
	if err := queues.Ack(broker.MessageID{Name: "nope", ID: 0}); err != nil {
		t.Fatal(err)
	}

	if err := queues.Remove("q"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Remove("q"); err != nil {
		t.Fatal(err)
	}
	if names := queues.List(""); len(names) != 0 {
		t.Errorf("q should be gone : %v", names)
	}
}

func TestQueues_ListByPrefix(t *testing.T) {
	queues := openQueues(t, "TestQueues_ListByPrefix")
	defer queues.Close()

	for _, name := range []broker.QueueName{"svc.a", "svc.b", "other"} {
		if err := queues.Add(broker.NoConnection, name); err != nil {
			t.Fatal(err)
		}
	}

	names := queues.List("svc.")
	if len(names) != 2 || names[0] != "svc.a" || names[1] != "svc.b" {
		t.Errorf("prefix listing failed : %v", names)
	}
	if names := queues.List(""); len(names) != 3 {
		t.Errorf("empty prefix should list everything : %v", names)
	}
}

func TestQueues_EntryLookup(t *testing.T) {
	queues := openQueues(t, "TestQueues_EntryLookup")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}
	id, err := queues.Send("originA", "q", request("m1"))
	if err != nil {
		t.Fatal(err)
	}

	entry := queues.Entry(*id)
	if entry == nil {
		t.Fatal("the entry should exist")
	}
	if entry.Origin != "originA" || !bytes.Equal(entry.Message.Data, []byte("m1")) {
		t.Errorf("entry content is wrong : %+v", entry)
	}
	if entry.Time == 0 {
		t.Error("the entry should be timestamped")
	}

	if entry := queues.Entry(broker.MessageID{Name: "q", ID: 99}); entry != nil {
		t.Errorf("an unknown id has no entry : %+v", entry)
	}
	if entry := queues.Entry(broker.MessageID{Name: "nope", ID: 0}); entry != nil {
		t.Errorf("an unknown queue has no entry : %+v", entry)
	}
}

func TestQueues_TransferCursor(t *testing.T) {
	queues := openQueues(t, "TestQueues_TransferCursor")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q1"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add(broker.NoConnection, "q2"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := queues.Send("o", "q1", request("a")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := queues.Send("o", "q2", request("b")); err != nil {
		t.Fatal(err)
	}

	// from=0 skips id 0, per-queue order is preserved
	items := queues.Transfer(0, []broker.QueueName{"q1", "q2"})
	if len(items) != 2 {
		t.Fatalf("ids 1 and 2 of q1 should transfer, q2 only has id 0 : %v", items)
	}
	if items[0].ID.ID != 1 || items[1].ID.ID != 2 {
		t.Errorf("per-queue order should be preserved : %v", items)
	}

	// unknown names are skipped via the ephemeral queue
	if items := queues.Transfer(-1, []broker.QueueName{"nope"}); len(items) != 0 {
		t.Errorf("unknown queues transfer nothing : %v", items)
	}
}

func TestQueues_Contents(t *testing.T) {
	queues := openQueues(t, "TestQueues_Contents")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}
	for _, data := range []string{"a", "b"} {
		if _, err := queues.Send("o", "q", request(data)); err != nil {
			t.Fatal(err)
		}
	}

	contents := queues.Contents("q")
	if len(contents) != 2 {
		t.Fatalf("both entries should snapshot : %v", contents)
	}
	if contents[0].ID.ID != 0 || contents[1].ID.ID != 1 {
		t.Errorf("snapshot order should be insertion order : %v", contents)
	}
	if !bytes.Equal(contents[0].Entry.Message.Data, []byte("a")) {
		t.Errorf("snapshot content is wrong : %+v", contents[0])
	}
}

func TestQueues_Lengths(t *testing.T) {
	queues := openQueues(t, "TestQueues_Lengths")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q1"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add(broker.NoConnection, "q2"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := queues.Send("o", "q1", request("m")); err != nil {
			t.Fatal(err)
		}
	}

	lengths := queues.Lengths()
	if len(lengths) != 2 {
		t.Fatalf("both queues should be enumerated : %v", lengths)
	}
	if lengths[0].Name != "q1" || lengths[0].Length != 3 {
		t.Errorf("q1 should have 3 entries : %+v", lengths[0])
	}
	if lengths[1].Name != "q2" || lengths[1].Length != 0 {
		t.Errorf("q2 should be empty : %+v", lengths[1])
	}

	if n, exists := queues.Measure("q1"); !exists || n != 3 {
		t.Errorf("measure(q1) should be 3 : %d %v", n, exists)
	}
	if _, exists := queues.Measure("nope"); exists {
		t.Error("measuring a missing queue should report absence")
	}
}

func TestQueues_ReplayFidelity(t *testing.T) {
	path := ringFile(t, "TestQueues_ReplayFidelity")

	queues, err := broker.Open(path, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if err := queues.Add(broker.NoConnection, "p"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add("c", "t"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := queues.Send("o", "p", request("m")); err != nil {
			t.Fatal(err)
		}
	}
	if err := queues.Ack(broker.MessageID{Name: "p", ID: 1}); err != nil {
		t.Fatal(err)
	}
	before := queues.Lengths()
	beforeContents := queues.Contents("p")
	if err := queues.Close(); err != nil {
		t.Fatal(err)
	}

	// reopen - replaying the full journal must rebuild the same state
	queues, err = broker.Open(path, 1000)
	if err != nil {
		t.Fatal(err)
	}
	defer queues.Close()

	after := queues.Lengths()
	if len(after) != len(before) {
		t.Fatalf("queue sets differ : %v != %v", after, before)
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("queue lengths differ : %v != %v", after[i], before[i])
		}
	}

	afterContents := queues.Contents("p")
	if len(afterContents) != len(beforeContents) {
		t.Fatalf("contents differ : %v != %v", afterContents, beforeContents)
	}
	for i := range beforeContents {
		if afterContents[i].ID != beforeContents[i].ID {
			t.Errorf("ids differ after replay : %v != %v", afterContents[i].ID, beforeContents[i].ID)
		}
		if !bytes.Equal(afterContents[i].Entry.Message.Data, beforeContents[i].Entry.Message.Data) {
			t.Errorf("messages differ after replay : %+v", afterContents[i])
		}
	}

	if owned := queues.OwnedQueues("c"); len(owned) != 1 || owned[0] != "t" {
		t.Errorf("ownership should survive replay : %v", owned)
	}

	// ids allocated after recovery continue past the highest replayed id
	id, err := queues.Send("o", "p", request("m"))
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != 3 {
		t.Errorf("next id should resume at 3 : %d", id.ID)
	}
}

func TestQueues_CorruptRecordIsDropped(t *testing.T) {
	path := ringFile(t, "TestQueues_CorruptRecordIsDropped")

	ring, err := journal.OpenRing(path, 1000)
	if err != nil {
		t.Fatal(err)
	}
	defer ring.Close()

	records := [][]byte{
		broker.AddOp(broker.NoConnection, "q").Encode(),
		[]byte("not an op record"),
		broker.SendOp("o", "q", 0, request("m")).Encode(),
	}
	for _, record := range records {
		if err := ring.Append(record); err != nil {
			t.Fatal(err)
		}
	}

	queues, err := broker.New(ring)
	if err != nil {
		t.Fatal(err)
	}
	defer queues.Close()

	// the corrupt record was dropped, the rest replayed
	if n, _ := queues.Measure("q"); n != 1 {
		t.Errorf("q should hold the one valid send : %d", n)
	}
}

func TestQueues_InvariantViolationIsFatal(t *testing.T) {
	path := ringFile(t, "TestQueues_InvariantViolationIsFatal")

	ring, err := journal.OpenRing(path, 1000)
	if err != nil {
		t.Fatal(err)
	}
	defer ring.Close()

	// sends with decreasing ids violate the insertion order invariant
	records := [][]byte{
		broker.AddOp(broker.NoConnection, "q").Encode(),
		broker.SendOp("o", "q", 5, request("m")).Encode(),
		broker.SendOp("o", "q", 3, request("m")).Encode(),
	}
	for _, record := range records {
		if err := ring.Append(record); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := broker.New(ring); err == nil {
		t.Error("recovery must abort on an invariant violation")
	} else {
		t.Logf("startup aborted : %v", err)
	}
}

func TestQueues_FailedAppendLeavesStateUnchanged(t *testing.T) {
	queues, err := broker.New(&stopAcceptingRing{})
	if err != nil {
		t.Fatal(err)
	}
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err == nil {
		t.Fatal("the append should have failed")
	}
	if names := queues.List(""); len(names) != 0 {
		t.Errorf("a failed append must not mutate state : %v", names)
	}
}

// stopAcceptingRing is empty and rejects every append
type stopAcceptingRing struct{}

func (a *stopAcceptingRing) Append(record []byte) error         { return journal.ErrRingFull }
func (a *stopAcceptingRing) Replay(fn func([]byte) error) error { return nil }
func (a *stopAcceptingRing) Len() (int, error)                  { return 0, nil }
func (a *stopAcceptingRing) Capacity() int                      { return 0 }
func (a *stopAcceptingRing) Close() error                       { return nil }

func TestQueues_Find(t *testing.T) {
	queues := openQueues(t, "TestQueues_Find")
	defer queues.Close()

	if err := queues.Add("c", "q"); err != nil {
		t.Fatal(err)
	}
	if _, err := queues.Send("o", "q", request("m")); err != nil {
		t.Fatal(err)
	}

	info := queues.Find("q")
	if info.Name != "q" || info.Owner != "c" || info.Length != 1 {
		t.Errorf("find returned the wrong snapshot : %+v", info)
	}

	// a missing name yields an ephemeral empty snapshot and creates nothing
	info = queues.Find("ghost")
	if info.Name != "ghost" || info.Owner != broker.NoConnection || info.Length != 0 {
		t.Errorf("find should return an ephemeral snapshot : %+v", info)
	}
	if names := queues.List(""); len(names) != 1 {
		t.Errorf("find must not create queues : %v", names)
	}
}
