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
	"testing"
	"time"

	"github.com/Zhengchai/message-switch/pkg/broker"
)

func TestWait_WakesOnSend(t *testing.T) {
	queues := openQueues(t, "TestWait_WakesOnSend")
	defer queues.Close()

	woke := make(chan time.Duration, 1)
	start := time.Now()
	go func() {
		queues.Wait(-1, 5*time.Second, []broker.QueueName{"q"})
		woke <- time.Since(start)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}
	if _, err := queues.Send("o", "q", request("m")); err != nil {
		t.Fatal(err)
	}

	select {
	case elapsed := <-woke:
		if elapsed >= 5*time.Second {
			t.Errorf("the wait should have woken before the timeout : %v", elapsed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("the wait never woke")
	}

	items := queues.Transfer(-1, []broker.QueueName{"q"})
	if len(items) != 1 {
		t.Errorf("the message should be transferable after the wake : %v", items)
	}
}

func TestWait_Timeout(t *testing.T) {
	queues := openQueues(t, "TestWait_Timeout")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}

	timeout := 200 * time.Millisecond
	start := time.Now()
	queues.Wait(-1, timeout, []broker.QueueName{"q"})
	elapsed := time.Since(start)

	if elapsed < timeout-20*time.Millisecond {
		t.Errorf("the wait should have lasted at least the timeout : %v", elapsed)
	}
}

func TestWait_ZeroTimeoutReturnsImmediately(t *testing.T) {
	queues := openQueues(t, "TestWait_ZeroTimeoutReturnsImmediately")
	defer queues.Close()

	start := time.Now()
	queues.Wait(-1, 0, []broker.QueueName{"q"})
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("a zero timeout should return immediately : %v", elapsed)
	}
}

func TestWait_ReturnsImmediatelyWhenBehindCursor(t *testing.T) {
	queues := openQueues(t, "TestWait_ReturnsImmediatelyWhenBehindCursor")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "q"); err != nil {
		t.Fatal(err)
	}
	if _, err := queues.Send("o", "q", request("m")); err != nil {
		t.Fatal(err)
	}

	// from = -1 and an entry already exists - nothing to wait for
	start := time.Now()
	queues.Wait(-1, 5*time.Second, []broker.QueueName{"q"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("the wait should have returned promptly : %v", elapsed)
	}
}

func TestWait_WakesOnQueueCreation(t *testing.T) {
	queues := openQueues(t, "TestWait_WakesOnQueueCreation")
	defer queues.Close()

	woke := make(chan time.Duration, 1)
	start := time.Now()
	go func() {
		queues.Wait(0, 2*time.Second, []broker.QueueName{"nope"})
		woke <- time.Since(start)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := queues.Add(broker.NoConnection, "nope"); err != nil {
		t.Fatal(err)
	}

	select {
	case elapsed := <-woke:
		if elapsed >= 2*time.Second {
			t.Errorf("the wait should have woken on creation : %v", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("the wait never woke on creation")
	}
}

func TestWait_MultipleQueues(t *testing.T) {
	queues := openQueues(t, "TestWait_MultipleQueues")
	defer queues.Close()

	if err := queues.Add(broker.NoConnection, "a"); err != nil {
		t.Fatal(err)
	}
	if err := queues.Add(broker.NoConnection, "b"); err != nil {
		t.Fatal(err)
	}

	woke := make(chan struct{})
	go func() {
		queues.Wait(-1, 5*time.Second, []broker.QueueName{"a", "b"})
		close(woke)
	}()

	time.Sleep(100 * time.Millisecond)
	// a send into either watched queue wakes the waiter
	if _, err := queues.Send("o", "b", request("m")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("the wait never woke")
	}
}
