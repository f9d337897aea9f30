package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"dumpmcp/dump"
)

// CLI handlers. Dump files are read and written as flat byte blobs; all
// interpretation happens in the dump package. Results go to stdout as JSON,
// diagnostics to stderr.

func readDump(path string) []byte {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read dump file: %v", err)
	}
	return raw
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result to JSON: %v", err)
	}
	fmt.Println(string(out))
}

func decodeCmd(args []string) {
	if len(args) < 1 {
		log.Fatalf("usage: dumpmcp decode <dumpfile> [schemafile]")
	}

	schema := dump.ControllerSchema()
	if len(args) > 1 {
		schema = loadSchema(args[1:])
	}

	m, err := dump.Decode(readDump(args[0]), schema)
	if err != nil {
		log.Fatalf("failed to decode dump: %v", err)
	}

	log.Printf("Decoded %d-byte dump, %d parameters.", m.Len(), schema.Len())
	printJSON(m.Values())
}

func setCmd(args []string) {
	if len(args) < 4 {
		log.Fatalf("usage: dumpmcp set <dumpfile> <outfile> <key> <value>")
	}

	value, err := strconv.Atoi(args[3])
	if err != nil {
		log.Fatalf("value must be an integer: %v", err)
	}

	m, err := dump.Decode(readDump(args[0]), dump.ControllerSchema())
	if err != nil {
		log.Fatalf("failed to decode dump: %v", err)
	}

	if err := m.SetValue(args[2], value); err != nil {
		log.Fatalf("failed to set %s: %v", args[2], err)
	}

	if err := os.WriteFile(args[1], m.Encode(), 0o644); err != nil {
		log.Fatalf("failed to write dump file: %v", err)
	}
	log.Printf("Wrote %s with %s = %d.", args[1], args[2], value)
}

func diffCmd(args []string) {
	if len(args) < 2 {
		log.Fatalf("usage: dumpmcp diff <dumpfile-a> <dumpfile-b>")
	}

	rawA := readDump(args[0])
	rawB := readDump(args[1])

	schema := dump.ControllerSchema()
	ma, errA := dump.Decode(rawA, schema)
	mb, errB := dump.Decode(rawB, schema)
	if errA != nil || errB != nil {
		// Length-mismatched or truncated captures still diff byte-wise.
		log.Println("One side is not a well-formed dump; reporting byte diff only.")
		printJSON(dump.ModelDiff{Bytes: dump.DiffBytes(rawA, rawB)})
		return
	}

	printJSON(dump.DiffModels(ma, mb))
}

func scanCmd(args []string) {
	if len(args) < 1 {
		log.Fatalf("usage: dumpmcp scan <dumpfile> [markerbyte]")
	}

	marker := byte(dump.MarkerByte)
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			log.Fatalf("marker byte must be a byte value (e.g. 0x4D): %v", err)
		}
		marker = byte(v)
	}

	raw := readDump(args[0])
	groups := []dump.MarkerGroup{}
	for g := range dump.MarkerGroups(raw, marker, dump.GroupSize) {
		groups = append(groups, g)
	}

	log.Printf("Found %d occurrences of marker 0x%02X.", len(groups), marker)
	printJSON(groups)
}
