package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jensneuse/abstractlogger"
	"go.uber.org/zap"

	engine "github.com/weftql/weft/internal/engine"
	eventbus "github.com/weftql/weft/internal/eventbus"
	otelsetup "github.com/weftql/weft/internal/otel"
	schema "github.com/weftql/weft/internal/schema"
)

const rootUsage = `weft — GraphQL execution engine tools

USAGE:
  weft <command> [flags]

COMMANDS:
  run              Execute a query against an SDL schema and a JSON document
  render           Parse, merge and print an SDL schema
  help             Show help for any command
`

const runUsage = `run FLAGS:
  -schema <file>            GraphQL SDL schema file (required)
  -data <file>              JSON document used as the root value
  -query <string>           Query text; use -query-file for a file
  -query-file <file>        Read the query from a file
  -variables <json>         Variable values as a JSON object
  -operation <name>         Operation name when the document has several
  -pretty                   Pretty-print the JSON response
  -verbose                  Enable debug logging
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: weft)
`

const renderUsage = `render FLAGS:
  -schema <file>   GraphQL SDL schema file (required)
  -out <file>      Write rendered SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("weft", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "run":
		return cmdRun(cmdArgs)
	case "render":
		return cmdRender(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "run":
		fmt.Print(runUsage)
	case "render":
		fmt.Print(renderUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdRun(args []string) error {
	schemaFile := ""
	dataFile := ""
	query := ""
	queryFile := ""
	variablesJSON := ""
	operation := ""
	pretty := false
	verbose := false
	otelEndpoint := ""
	otelService := "weft"

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL schema file")
	fs.StringVar(&dataFile, "data", dataFile, "JSON document used as the root value")
	fs.StringVar(&query, "query", query, "Query text")
	fs.StringVar(&queryFile, "query-file", queryFile, "Read the query from a file")
	fs.StringVar(&variablesJSON, "variables", variablesJSON, "Variable values as a JSON object")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON response")
	fs.BoolVar(&verbose, "verbose", verbose, "Enable debug logging")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, runUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, runUsage)
		return fmt.Errorf("-schema is required")
	}
	if query == "" && queryFile == "" {
		fmt.Fprint(os.Stderr, runUsage)
		return fmt.Errorf("one of -query or -query-file is required")
	}
	if query == "" {
		body, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("read query: %w", err)
		}
		query = string(body)
	}

	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	sch, err := schema.BuildFromSDL(string(sdl), schema.Resolvers{})
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	var rootValue any
	if dataFile != "" {
		body, err := os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		if err := json.Unmarshal(body, &rootValue); err != nil {
			return fmt.Errorf("parse data: %w", err)
		}
	}

	variables := map[string]any{}
	if variablesJSON != "" {
		if err := json.Unmarshal([]byte(variablesJSON), &variables); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otelsetup.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}

	eng, err := engine.New(sch, engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}

	res := eng.Execute(context.Background(), engine.Request{
		Query:         query,
		OperationName: operation,
		Variables:     variables,
		RootValue:     rootValue,
	})

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func cmdRender(args []string) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL schema file")
	fs.StringVar(&outFile, "out", outFile, "Write rendered SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, renderUsage)
		return fmt.Errorf("-schema is required")
	}
	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	sch, err := schema.BuildFromSDL(string(sdl), schema.Resolvers{})
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	rendered := schema.Render(sch)
	if outFile == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(outFile, []byte(rendered), 0644)
}

func newLogger(verbose bool) (abstractlogger.Logger, error) {
	if !verbose {
		return abstractlogger.Noop{}, nil
	}
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	return abstractlogger.NewZapLogger(zapLogger, abstractlogger.DebugLevel), nil
}
