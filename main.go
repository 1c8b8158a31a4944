package main

import (
	"github.com/mudguts/cmdrlog/cmd"
)

func main() {
	cmd.Execute()
}
