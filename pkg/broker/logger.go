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

import "github.com/Zhengchai/message-switch/pkg/logging"

type pkgobject struct{}

var logger = logging.NewPackageLogger(pkgobject{})

// log events
const (
	LOG_EVENT_STARTED logging.Event = "STARTED"
	LOG_EVENT_STOPPED logging.Event = "STOPPED"

	LOG_EVENT_RECORD_DROPPED logging.Event = "RECORD_DROPPED"
	LOG_EVENT_SEND_DROPPED   logging.Event = "SEND_DROPPED"
	LOG_EVENT_OWNER_REAPED   logging.Event = "OWNER_REAPED"
)
