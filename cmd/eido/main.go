// eido - validate, inspect and convert Portable Encapsulated Projects
// Source: https://github.com/pepkit/eido

package main

import (
	"os"

	"github.com/pepkit/eido/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
