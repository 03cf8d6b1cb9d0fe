package main

import (
	"github.com/kube-tools/ns-scale/pkg/cmd"
)

func main() {
	cmd.Execute()
}
