// Package main provides the command-line interface for the apiprobe API test harness.
package main

import "github.com/vnykmshr/apiprobe/internal/cli"

var version = "0.1.0"

func main() {
	cli.Execute(version)
}
