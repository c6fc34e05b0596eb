package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-questions/pkg/prompt"
	"github.com/goliatone/go-questions/pkg/question"
	"github.com/goliatone/go-questions/pkg/template"
)

func main() {
	source := flag.String("source", "", "question definition path (JSON or YAML)")
	contextPath := flag.String("context", "", "context document path (JSON or YAML)")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if *source == "" {
		log.Fatalf("missing -source")
	}

	raw, err := os.ReadFile(*source)
	if err != nil {
		log.Fatalf("Failed to read definition: %v", err)
	}
	q, err := question.Parse(raw)
	if err != nil {
		log.Fatalf("Failed to parse definition: %v", err)
	}

	ctx, err := loadContext(*contextPath)
	if err != nil {
		log.Fatalf("Failed to load context: %v", err)
	}

	filtered, err := q.Filter(ctx)
	if err != nil {
		log.Fatalf("Failed to filter question: %v", err)
	}
	if filtered == nil {
		log.Fatalf("Question %q does not apply under the given context", q.ID)
	}

	runner := prompt.New()
	form, err := runner.Ask(context.Background(), filtered)
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Fprintln(os.Stderr, "Aborted.")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to collect answers: %v", err)
	}

	data, err := filtered.GetData(form)
	if err != nil {
		log.Fatalf("Failed to bind answers: %v", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode answers: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, append(encoded, '\n'), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Answers written to %s\n", *output)
	} else {
		fmt.Println(string(encoded))
	}
}

func loadContext(path string) (template.Context, error) {
	if path == "" {
		return template.Context{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		doc = nil
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON or YAML: %s", path)
		}
	}
	return template.Context(doc), nil
}
