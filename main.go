package main

import "github.com/clpipe/searchusage/cmd/searchusage"

func main() { searchusage.Execute() }
