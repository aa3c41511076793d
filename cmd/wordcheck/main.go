// Copyright 2025 The WordCheck Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordcheck spell checker CLI and IPC server.

WordCheck finds misspelled words in text and offers the vocabulary words within
a small Damerau-Levenshtein distance as replacements. A Bloom filter rejects
tokens that are certainly not words before a BK-tree range query looks for
candidates.

Both indexes are built once from a plain text vocabulary (one word per line)
and written next to it as bk_tree.bin and bloom_filter.bin. Later runs decode
those files; a missing or corrupt file triggers a rebuild.

# Usage

Check a file, picking replacements from a menu:

	wordcheck check -f notes.txt

Pipe text in and take the first candidate for every misspelled word:

	echo "Helo wrold" | wordcheck check --auto

Check lines as you type them:

	wordcheck check -i

Force a rebuild of both index files:

	wordcheck build --dict /usr/share/dict/words

Serve msgpack requests over stdin/stdout, with Prometheus metrics:

	wordcheck serve --metrics-addr :9090

Inspect a file:

	wordcheck info bk_tree.bin

# Configuration

Runtime configuration lives in a TOML file, created with defaults when missing:

	[index]
	dictionary = "dictionary.txt"
	tree = "bk_tree.bin"
	filter = "bloom_filter.bin"
	alphabet_length = 255
	fp_prob = 0.01

	[check]
	tolerance = 1
	max_candidates = 10

	[server]
	max_text_length = 65536
	metrics_addr = ""

Flags given on the command line win over the file.

# IPC Protocol

The server reads msgpack maps from stdin and answers each with one msgpack
map on stdout:

	{"id": "req1", "w": "helo"}
	{"id": "req1", "k": false, "s": ["hell", "hello", "help"], "c": 3, "t": 41}

See package server for correction and stats requests.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "wordcheck"
	gh      = "https://github.com/bastiangx/wordcheck"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only wires the command tree; every subcommand owns its flow.
func main() {
	sigHandler()
	if err := NewRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
