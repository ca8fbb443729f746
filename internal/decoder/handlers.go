// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package decoder

import (
	"m4o.io/parallelpbf/model"
)

// Handlers receives the decoded contents of blobs. A nil handler means the
// matching primitives are not decoded at all. Handlers may be called from
// several goroutines at once, one per blob being decoded; within a blob they
// are called in file order.
type Handlers struct {
	Node        func(*model.Node) error
	Way         func(*model.Way) error
	Relation    func(*model.Relation) error
	Changeset   func(int64) error
	Header      func(model.Header) error
	BoundingBox func(model.BoundingBox) error
}

func (h *Handlers) wantsData() bool {
	return h.Node != nil || h.Way != nil || h.Relation != nil || h.Changeset != nil
}
