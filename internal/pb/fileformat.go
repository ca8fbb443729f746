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

package pb

// Blob is the (possibly compressed) payload of a fileblock.
type Blob struct {
	// RawSize is the uncompressed size of a compressed payload.
	RawSize *int32
	// Data is one of *Blob_Raw, *Blob_ZlibData, *Blob_LzmaData,
	// *Blob_OBSOLETEBzip2Data, *Blob_Lz4Data or *Blob_ZstdData.
	Data isBlob_Data
}

type isBlob_Data interface {
	isBlob_Data()
}

type (
	Blob_Raw               struct{ Raw []byte }
	Blob_ZlibData          struct{ ZlibData []byte }
	Blob_LzmaData          struct{ LzmaData []byte }
	Blob_OBSOLETEBzip2Data struct{ OBSOLETEBzip2Data []byte }
	Blob_Lz4Data           struct{ Lz4Data []byte }
	Blob_ZstdData          struct{ ZstdData []byte }
)

func (*Blob_Raw) isBlob_Data()               {}
func (*Blob_ZlibData) isBlob_Data()          {}
func (*Blob_LzmaData) isBlob_Data()          {}
func (*Blob_OBSOLETEBzip2Data) isBlob_Data() {}
func (*Blob_Lz4Data) isBlob_Data()           {}
func (*Blob_ZstdData) isBlob_Data()          {}

func (b *Blob) GetRawSize() int32 {
	if b != nil && b.RawSize != nil {
		return *b.RawSize
	}

	return 0
}

func (b *Blob) GetRaw() []byte {
	if d, ok := b.getData().(*Blob_Raw); ok {
		return d.Raw
	}

	return nil
}

func (b *Blob) GetZlibData() []byte {
	if d, ok := b.getData().(*Blob_ZlibData); ok {
		return d.ZlibData
	}

	return nil
}

func (b *Blob) GetLzmaData() []byte {
	if d, ok := b.getData().(*Blob_LzmaData); ok {
		return d.LzmaData
	}

	return nil
}

func (b *Blob) GetLz4Data() []byte {
	if d, ok := b.getData().(*Blob_Lz4Data); ok {
		return d.Lz4Data
	}

	return nil
}

func (b *Blob) GetZstdData() []byte {
	if d, ok := b.getData().(*Blob_ZstdData); ok {
		return d.ZstdData
	}

	return nil
}

func (b *Blob) getData() isBlob_Data {
	if b == nil {
		return nil
	}

	return b.Data
}

func (b *Blob) appendTo(buf []byte) []byte {
	switch d := b.Data.(type) {
	case *Blob_Raw:
		buf = appendBytes(buf, 1, d.Raw)
	case *Blob_ZlibData:
		buf = appendBytes(buf, 3, d.ZlibData)
	case *Blob_LzmaData:
		buf = appendBytes(buf, 4, d.LzmaData)
	case *Blob_OBSOLETEBzip2Data:
		buf = appendBytes(buf, 5, d.OBSOLETEBzip2Data)
	case *Blob_Lz4Data:
		buf = appendBytes(buf, 6, d.Lz4Data)
	case *Blob_ZstdData:
		buf = appendBytes(buf, 7, d.ZstdData)
	}

	return appendScalar(buf, 2, b.RawSize, fromInt32)
}

func (b *Blob) unmarshal(buf []byte) error {
	return walk(buf, func(f field) error {
		if f.num == 2 {
			return setScalar(&b.RawSize, f, asInt32)
		}

		var data []byte

		switch f.num {
		case 1, 3, 4, 5, 6, 7:
			var err error
			if data, err = f.bytes(); err != nil {
				return err
			}
		default:
			return nil
		}

		switch f.num {
		case 1:
			b.Data = &Blob_Raw{Raw: data}
		case 3:
			b.Data = &Blob_ZlibData{ZlibData: data}
		case 4:
			b.Data = &Blob_LzmaData{LzmaData: data}
		case 5:
			b.Data = &Blob_OBSOLETEBzip2Data{OBSOLETEBzip2Data: data}
		case 6:
			b.Data = &Blob_Lz4Data{Lz4Data: data}
		case 7:
			b.Data = &Blob_ZstdData{ZstdData: data}
		}

		return nil
	})
}

// BlobHeader precedes every Blob in a file.
type BlobHeader struct {
	Type      *string
	Indexdata []byte
	Datasize  *int32
}

func (h *BlobHeader) GetType() string {
	if h != nil && h.Type != nil {
		return *h.Type
	}

	return ""
}

func (h *BlobHeader) GetIndexdata() []byte {
	if h != nil {
		return h.Indexdata
	}

	return nil
}

func (h *BlobHeader) GetDatasize() int32 {
	if h != nil && h.Datasize != nil {
		return *h.Datasize
	}

	return 0
}

func (h *BlobHeader) appendTo(b []byte) []byte {
	b = appendString(b, 1, h.Type)
	if h.Indexdata != nil {
		b = appendBytes(b, 2, h.Indexdata)
	}

	return appendScalar(b, 3, h.Datasize, fromInt32)
}

func (h *BlobHeader) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setString(&h.Type, f)
		case 2:
			v, err := f.bytes()
			h.Indexdata = v

			return err
		case 3:
			return setScalar(&h.Datasize, f, asInt32)
		}

		return nil
	})
}

var (
	_ Message = (*Blob)(nil)
	_ Message = (*BlobHeader)(nil)
)
