// Command hdtstat loads an HDT file and prints its size statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/KonradHoeffner/hdt"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hdtstat: ")

	header := flag.Bool("header", false, "also print the embedded N-Triples header")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hdtstat <flags> <hdt file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	store, err := hdt.LoadFile(flag.Args()[0])
	if err != nil {
		log.Fatal(err)
	}

	sz := store.Size()
	fmt.Printf("subjects:   %d\n", sz.NumSubjects)
	fmt.Printf("predicates: %d\n", sz.NumPredicates)
	fmt.Printf("objects:    %d\n", sz.NumObjects)
	fmt.Printf("shared:     %d\n", sz.NumShared)
	fmt.Printf("triples:    %d\n", sz.NumTriples)

	if *header {
		os.Stdout.Write(store.HeaderBytes())
	}
}
