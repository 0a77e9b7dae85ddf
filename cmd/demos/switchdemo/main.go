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

package main

import (
	"flag"
	"time"

	"github.com/Zhengchai/message-switch/pkg/broker"
	"github.com/Zhengchai/message-switch/pkg/uid"
	"github.com/rs/zerolog/log"
)

// ./switchdemo -ring switchdemo.db -capacity 10000
//
// Exercises the switch end to end : creates a persistent queue, waits on it from a
// consumer goroutine, sends a request, transfers and acks it. Run it twice against
// the same ring file to watch the journal replay rebuild the queue state.
func main() {
	ringPath := flag.String("ring", "switchdemo.db", "path of the journal ring file")
	capacity := flag.Int("capacity", 10000, "journal ring capacity")
	flag.Parse()

	queues, err := broker.Open(*ringPath, *capacity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open the switch")
	}
	defer queues.Close()

	origin := broker.ConnectionID(uid.NextUID())
	const queue = broker.QueueName("demo.requests")

	if err := queues.Add(broker.NoConnection, queue); err != nil {
		log.Fatal().Err(err).Msg("failed to add the queue")
	}

	received := make(chan broker.TransferItem, 1)
	go func() {
		queues.Wait(-1, 10*time.Second, []broker.QueueName{queue})
		items := queues.Transfer(-1, []broker.QueueName{queue})
		if len(items) > 0 {
			received <- items[0]
		}
	}()

	id, err := queues.Send(origin, queue, &broker.Message{
		Kind:    broker.Request,
		ReplyTo: "demo.replies",
		Data:    []byte("hello switch"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("send failed")
	}
	log.Info().Str("id", id.String()).Msg("sent")

	select {
	case item := <-received:
		log.Info().Str("id", item.ID.String()).Bytes("data", item.Message.Data).Msg("received")
		if err := queues.Ack(item.ID); err != nil {
			log.Fatal().Err(err).Msg("ack failed")
		}
		log.Info().Str("id", item.ID.String()).Msg("acked")
	case <-time.After(10 * time.Second):
		log.Error().Msg("no message arrived")
	}

	for _, length := range queues.Lengths() {
		log.Info().Str("queue", string(length.Name)).Int("length", length.Length).Msg("queue length")
	}
}
