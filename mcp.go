package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"dumpmcp/dump"
)

// runMCP exposes the dump core as MCP tools. Dumps cross the tool boundary
// hex-encoded; the schema is the server's single registry and grows through
// the register-param tool as discoveries are confirmed.
func runMCP(schema *dump.Schema) {

	s := server.NewMCPServer(
		"Controller Dump MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("dump_describe-format",
		mcp.WithDescription("Returns the working notes on the controller's setup dump format: frame layout, known offsets, discovery procedure."),
	)
	s.AddTool(docTool, docToolHandler)

	listTool := mcp.NewTool("dump_list-params",
		mcp.WithDescription("Lists every registered parameter with its codec and byte offsets, in discovery-confidence order."),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling list params request.")

		type entry struct {
			Key     string `json:"key"`
			Codec   string `json:"codec,omitempty"`
			Offsets []int  `json:"offsets"`
		}
		entries := []entry{}
		for d := range schema.All() {
			entries = append(entries, entry{Key: d.Key, Codec: string(d.Codec), Offsets: d.Offsets})
		}
		return jsonResult(entries)
	})

	decodeTool := mcp.NewTool("dump_decode-dump",
		mcp.WithDescription("Decodes a setup dump into the known parameter values. Unknown bytes are preserved but not reported."),
		mcp.WithString("dump-hex", mcp.Required(), mcp.Description("The raw dump, hex encoded.")),
	)
	s.AddTool(decodeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling decode dump request.")

		m, errResult := decodeArg(request, "dump-hex", schema)
		if errResult != nil {
			return errResult, nil
		}
		return jsonResult(m.Values())
	})

	getTool := mcp.NewTool("dump_get-param",
		mcp.WithDescription("Reads one parameter value from a setup dump."),
		mcp.WithString("dump-hex", mcp.Required(), mcp.Description("The raw dump, hex encoded.")),
		mcp.WithString("key", mcp.Required(), mcp.Description("The parameter key (see dump_list-params).")),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling get param request.")

		key, err := request.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		m, errResult := decodeArg(request, "dump-hex", schema)
		if errResult != nil {
			return errResult, nil
		}

		v, err := m.Value(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(dump.ParamValue{Key: key, Value: v})
	})

	setTool := mcp.NewTool("dump_set-param",
		mcp.WithDescription("Sets one parameter in a setup dump and returns the modified dump. Only the bytes owned by the parameter change."),
		mcp.WithString("dump-hex", mcp.Required(), mcp.Description("The raw dump, hex encoded.")),
		mcp.WithString("key", mcp.Required(), mcp.Description("The parameter key.")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("The new value, inside the parameter's domain.")),
	)
	s.AddTool(setTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling set param request.")

		key, err := request.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value, err := request.RequireInt("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		m, errResult := decodeArg(request, "dump-hex", schema)
		if errResult != nil {
			return errResult, nil
		}

		if err := m.SetValue(key, value); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(hex.EncodeToString(m.Encode())), nil
	})

	diffTool := mcp.NewTool("dump_diff-dumps",
		mcp.WithDescription("Compares two dumps byte by byte and, where both decode, parameter by parameter. A single hardware edit should change exactly one parameter's offsets."),
		mcp.WithString("dump-hex-a", mcp.Required(), mcp.Description("The first dump, hex encoded.")),
		mcp.WithString("dump-hex-b", mcp.Required(), mcp.Description("The second dump, hex encoded.")),
	)
	s.AddTool(diffTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling diff dumps request.")

		rawA, errResult := hexArg(request, "dump-hex-a")
		if errResult != nil {
			return errResult, nil
		}
		rawB, errResult := hexArg(request, "dump-hex-b")
		if errResult != nil {
			return errResult, nil
		}

		ma, errA := dump.Decode(rawA, schema)
		mb, errB := dump.Decode(rawB, schema)
		if errA != nil || errB != nil {
			return jsonResult(dump.ModelDiff{Bytes: dump.DiffBytes(rawA, rawB)})
		}
		return jsonResult(dump.DiffModels(ma, mb))
	})

	scanTool := mcp.NewTool("dump_scan-markers",
		mcp.WithDescription("Finds every occurrence of the group marker byte in a dump and reports its offset plus the trailing group bytes."),
		mcp.WithString("dump-hex", mcp.Required(), mcp.Description("The raw dump, hex encoded.")),
		mcp.WithNumber("marker", mcp.Description("Marker byte to scan for. Defaults to 0x4D.")),
		mcp.WithNumber("group-size", mcp.Description("Trailing bytes to report per occurrence. Defaults to 6.")),
	)
	s.AddTool(scanTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling scan markers request.")

		raw, errResult := hexArg(request, "dump-hex")
		if errResult != nil {
			return errResult, nil
		}

		marker := request.GetInt("marker", dump.MarkerByte)
		groupSize := request.GetInt("group-size", dump.GroupSize)
		if marker < 0 || marker > 0xFF {
			return mcp.NewToolResultError(fmt.Sprintf("marker %d is not a byte value", marker)), nil
		}

		type group struct {
			Offset   int    `json:"offset"`
			Trailing string `json:"trailing-hex"`
		}
		groups := []group{}
		for g := range dump.MarkerGroups(raw, byte(marker), groupSize) {
			groups = append(groups, group{Offset: g.Offset, Trailing: hex.EncodeToString(g.Trailing)})
		}
		return jsonResult(groups)
	})

	registerTool := mcp.NewTool("dump_register-param",
		mcp.WithDescription("Registers a newly confirmed parameter in the server's schema. Use after a diff has pinned the offsets down."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Unique parameter key, e.g. enc03.mode.")),
		mcp.WithString("codec", mcp.Required(), mcp.Description("Encoding: cc (two offsets, nibble-split 0-127), channel (one offset, low nibble, 1-16) or mode (one offset, high nibble, 0-15).")),
		mcp.WithString("offsets", mcp.Required(), mcp.Description("Comma-separated byte offsets, e.g. 27,28.")),
	)
	s.AddTool(registerTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling register param request.")

		key, err := request.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		codec, err := request.RequireString("codec")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		offsetsArg, err := request.RequireString("offsets")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var offsets []int
		for _, field := range strings.Split(offsetsArg, ",") {
			off, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("bad offset %q: %v", field, err)), nil
			}
			offsets = append(offsets, off)
		}

		d := dump.Descriptor{Key: key, Codec: dump.Codec(codec), Offsets: offsets}
		if err := schema.Register(d); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		log.Printf("[mcp] Registered %s (%s) at offsets %v.", key, codec, offsets)
		return mcp.NewToolResultText(fmt.Sprintf("Registered %s. The schema now holds %d parameters.", key, schema.Len())), nil
	})

	log.Println("Starting Controller Dump MCP server...")

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}

}

// decodeArg reads and decodes a hex dump argument, mapping failures to tool
// errors the client can recover from.
func decodeArg(request mcp.CallToolRequest, arg string, schema *dump.Schema) (*dump.Model, *mcp.CallToolResult) {
	raw, errResult := hexArg(request, arg)
	if errResult != nil {
		return nil, errResult
	}
	m, err := dump.Decode(raw, schema)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return m, nil
}

func hexArg(request mcp.CallToolRequest, arg string) ([]byte, *mcp.CallToolResult) {
	s, err := request.RequireString(arg)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%s is not valid hex: %v", arg, err))
	}
	return raw, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result to JSON: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

//go:embed format_notes.txt
var formatNotes string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling format notes request.")

	return mcp.NewToolResultText(formatNotes), nil
}
