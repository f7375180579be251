// Command inspect dumps raw store keys for debugging. The daemon must
// not be running against the same path.
package main

import (
	"flag"
	"fmt"
	"os"

	"curatord/pkg/store"
)

func main() {
	var (
		dbPath = flag.String("db", "./.database", "Pebble DB path")
		prefix = flag.String("prefix", "", "key prefix to list (msg:, task:, participant:, doc:)")
		dump   = flag.Bool("dump", false, "print values, not only keys")
	)
	flag.Parse()

	if err := store.Open(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	keys, err := store.ListKeys(*prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
		os.Exit(1)
	}
	for _, k := range keys {
		if !*dump {
			fmt.Println(k)
			continue
		}
		v, err := store.GetKey(k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", k, err)
			continue
		}
		fmt.Printf("%s\t%s\n", k, v)
	}
}
