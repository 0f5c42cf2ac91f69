// Copyright (C) 2025 the gofer authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import "time"

// Command execution timeout bounds, in milliseconds.
const (
	DefaultCommandTimeoutMS = 60 * 1000
	MaxCommandTimeoutMS     = 10 * 60 * 1000
)

// effectiveTimeout clamps a requested timeout to the hard ceiling, falling
// back to the default when no timeout was requested.
func effectiveTimeout(requestedMS int64, requested bool) time.Duration {
	ms := int64(DefaultCommandTimeoutMS)
	if requested && requestedMS > 0 {
		ms = requestedMS
		if ms > MaxCommandTimeoutMS {
			ms = MaxCommandTimeoutMS
		}
	}
	return time.Duration(ms) * time.Millisecond
}
