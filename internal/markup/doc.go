// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package markup builds small HTML node trees and serializes them with
// escaping applied to every text node and attribute value.
package markup
