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
	"fmt"

	"m4o.io/parallelpbf/internal/core"
)

// Decode unpacks a blob read by ReadNext and hands its contents to h. The
// header feature check always runs, even without a header handler. Data
// blobs are not unpacked when h has no data handler, and blobs of unknown
// type are skipped.
func Decode(info BlobInfo, data []byte, h *Handlers) error {
	switch info.Type {
	case OSMHeaderType:
	case OSMDataType:
		if !h.wantsData() {
			return nil
		}
	default:
		return nil
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	payload, err := unpack(buf, data)
	if err != nil {
		return fmt.Errorf("unable to unpack %s blob: %w", info.Type, err)
	}

	if info.Type == OSMHeaderType {
		err = decodeHeaderBlock(payload, h)
	} else {
		err = decodePrimitiveBlock(payload, h)
	}

	if err != nil {
		return fmt.Errorf("unable to decode %s blob: %w", info.Type, err)
	}

	return nil
}
