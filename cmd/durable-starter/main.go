package main

import "github.com/joeydtaylor/durable-starter/pkg/cli/cmd"

func main() { cmd.Execute() }
