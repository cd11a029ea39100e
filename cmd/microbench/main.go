package main

import (
	"github.com/NVIDIA/microbench/pkg/cli"
)

func main() {
	cli.Execute()
}
