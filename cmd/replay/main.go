// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/attitude/internal/app"
)

func main() {
	dbPath := flag.String("db", "./attitude.db", "path to the recorder database")
	session := flag.String("session", "", "session id to replay (default: latest)")
	flag.Parse()

	if err := app.RunReplay(os.Stdout, *dbPath, *session); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
