// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import "github.com/kortschak/gaze/gazeerr"

func errUnknownSegType(name string) error {
	return &gazeerr.Error{Kind: gazeerr.MalformedInput, Msg: "unknown segment type " + name}
}
