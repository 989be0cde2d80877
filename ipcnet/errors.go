// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ipcnet

import "errors"

var errFullInbox = errors.New("ipcnet: inbound frame queue full")
