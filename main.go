package main

import (
	"log"
	"os"

	"dumpmcp/dump"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "decode":
			decodeCmd(os.Args[2:])
			return
		case "set":
			setCmd(os.Args[2:])
			return
		case "diff":
			diffCmd(os.Args[2:])
			return
		case "scan":
			scanCmd(os.Args[2:])
			return

		case "mcp":
			runMCP(loadSchema(os.Args[2:]))
			return

		default:
			log.Fatalf("unknown command %q", os.Args[1])
		}
	}
	log.Println("usage: dumpmcp decode|set|diff|scan|mcp")
}

// loadSchema returns the builtin parameter map, or the one from a schema
// file when a path is given.
func loadSchema(args []string) *dump.Schema {
	if len(args) == 0 {
		return dump.ControllerSchema()
	}

	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("failed to open schema file: %v", err)
	}
	defer f.Close()

	s, err := dump.ReadSchema(f)
	if err != nil {
		log.Fatalf("failed to load schema %s: %v", args[0], err)
	}
	log.Printf("Loaded schema %s (%d parameters, dump length %d).", args[0], s.Len(), s.DumpLen())
	return s
}
