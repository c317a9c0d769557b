// lor looks up Library of Ruina pages by name.
// Exact, fuzzy and autocomplete queries over a prebuilt index, with
// disambiguation when several pages share a name.
package main

import (
	"os"

	"github.com/corey/lor/cmd/lor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
