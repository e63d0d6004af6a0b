// Copyright 2025 Blink Labs Software
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

package types

import (
	"encoding/hex"
	"strconv"
)

const (
	DeliveryBlobKeyPrefix = "delivery/"
)

// DeliveryBlobKey returns the content-addressed blob key for a delivery
// payload. Resubmissions with different ciphertext never overwrite an
// earlier payload.
func DeliveryBlobKey(jobID uint64, payloadHash []byte) string {
	return DeliveryBlobKeyPrefix +
		strconv.FormatUint(jobID, 10) +
		"/" +
		hex.EncodeToString(payloadHash)
}
