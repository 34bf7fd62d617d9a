// Command nbt is a small front end over the nbtlib packages: it reads
// a binary or SNBT-encoded tag, optionally narrows into it with an
// NBT Path expression, and writes the result back out as binary,
// SNBT, or JSON.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
