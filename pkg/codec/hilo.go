// Copyright 2025 walteh LLC
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

package codec

// hiLoUnpack splits 16-bit little-endian samples so that all low bytes come
// first, followed by all high bytes. A trailing odd byte is kept at the end.
func hiLoUnpack(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[i] = data[2*i]
		out[n+i] = data[2*i+1]
	}
	if len(data)%2 == 1 {
		out[len(data)-1] = data[len(data)-1]
	}
	return out
}

// hiLoPack reverses hiLoUnpack.
func hiLoPack(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[2*i] = data[i]
		out[2*i+1] = data[n+i]
	}
	if len(data)%2 == 1 {
		out[len(data)-1] = data[len(data)-1]
	}
	return out
}
