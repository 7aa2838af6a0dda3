// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package main

import (
	"os"

	"github.com/rdkcentral/dcm-agent/cmd/uploadstb/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
