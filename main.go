package main

import (
	"os"

	"github.com/dhcgn/eml-to-html/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
