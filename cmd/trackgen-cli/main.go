package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-trackgen/pkg/editor"
	"github.com/goliatone/go-trackgen/pkg/jsonschema"
	"github.com/goliatone/go-trackgen/pkg/preset"
	"github.com/goliatone/go-trackgen/pkg/prompt"
	"github.com/goliatone/go-trackgen/pkg/schema"
)

func main() {
	presetPath := flag.String("preset", "", "preset file to load (.json, .yaml)")
	edit := flag.Bool("edit", false, "edit the schema interactively before any output")
	renderPrompt := flag.Bool("render-prompt", false, "render the generation prompt for the schema")
	exportSchema := flag.Bool("export-schema", false, "export the response JSON schema")
	savePath := flag.String("save", "", "write the preset to this path afterwards")
	name := flag.String("name", "tracker", "preset name used when saving")
	description := flag.String("description", "", "preset description used when saving")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if err := checkOutputFlags(*renderPrompt, *exportSchema, *output); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	ctx := context.Background()

	tree := schema.NewTree()
	loadedName := *name
	loadedDescription := *description
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		tree, err = p.Tree()
		if err != nil {
			log.Fatalf("Failed to rebuild schema: %v", err)
		}
		if loadedName == "tracker" {
			loadedName = p.Name
		}
		if loadedDescription == "" {
			loadedDescription = p.Description
		}
	}

	if *edit {
		if err := editor.New(tree, nil).Run(ctx); err != nil {
			log.Fatalf("Editor failed: %v", err)
		}
	}

	fields := tree.Serialize()

	if *renderPrompt {
		builder, err := prompt.NewBuilder()
		if err != nil {
			log.Fatalf("Failed to create prompt builder: %v", err)
		}
		out, err := builder.Build(prompt.Request{Fields: fields})
		if err != nil {
			log.Fatalf("Failed to build prompt: %v", err)
		}
		writeOutput(*output, []byte(out))
	}

	if *exportSchema {
		data, err := jsonschema.Encode(fields)
		if err != nil {
			log.Fatalf("Failed to export schema: %v", err)
		}
		writeOutput(*output, data)
	}

	if *savePath != "" {
		p := preset.FromTree(loadedName, loadedDescription, tree)
		if err := preset.Save(*savePath, p); err != nil {
			log.Fatalf("Failed to save preset: %v", err)
		}
		fmt.Printf("Preset written to %s\n", *savePath)
	}
}

// checkOutputFlags rejects runs where two results would race for one output
// file; the second write would clobber the first.
func checkOutputFlags(renderPrompt, exportSchema bool, output string) error {
	if renderPrompt && exportSchema && output != "" {
		return errors.New("-render-prompt and -export-schema share a single -output file; run them separately or drop -output")
	}
	return nil
}

func writeOutput(path string, data []byte) {
	if path == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Output written to %s\n", path)
}
