package main

import "github.com/nodpts/no-dpts/cmd/nodpts"

func main() { nodpts.Execute() }
