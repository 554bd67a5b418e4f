// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/observatorio/geonoticias/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
