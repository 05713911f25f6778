// Command schema emits the JSON Schema of battle content catalogs and can
// check catalog files against the loader's validation rules.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"spirit-tamer/battlecore/internal/content"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("out", "-", "schema destination; - prints to stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	data, err := encodeSchema(buildSchema())
	if err != nil {
		fmt.Fprintf(stderr, "schema: %v\n", err)
		return 1
	}
	if *outPath == "-" {
		stdout.Write(data)
	} else if err := replaceFile(*outPath, data); err != nil {
		fmt.Fprintf(stderr, "schema: %v\n", err)
		return 1
	}

	failed := 0
	for _, path := range fs.Args() {
		cat, err := content.Load(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(stderr, "%s: ok (%d moves, %d spirits)\n", path, len(cat.MoveIDs()), len(cat.SpiritIDs()))
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(content.Document))
	schema.Title = "Spirit Tamer Battle Content"
	schema.Description = "Type charts, moves, status effects, spirits and AI policies loaded by battlesim"
	return schema
}

func encodeSchema(schema *jsonschema.Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return buf.Bytes(), nil
}

func replaceFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp schema: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
