package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"

	"wolfwave-builder/internal/generator"
	"wolfwave-builder/internal/layout"
	"wolfwave-builder/internal/model"
	"wolfwave-builder/internal/registry"
	"wolfwave-builder/internal/storage"
	"wolfwave-builder/internal/templating"
)

const defaultTemplatesDir = "templates"

func main() {
	// --- Command Parsing using 'flag' package ---
	componentsCmd := flag.NewFlagSet("components", flag.ExitOnError)
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	saveCmd := flag.NewFlagSet("save", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	previewCmd := flag.NewFlagSet("preview", flag.ExitOnError)
	watchCmd := flag.NewFlagSet("watch", flag.ExitOnError)

	componentsCatalogue := componentsCmd.String("catalogue", "", "Optional TOML catalogue overlay file")

	generateDoc := generateCmd.String("doc", "", "Path to the template document JSON file (required)")
	generateCanvas := generateCmd.String("canvas", "", "Canvas size WxH in pixels; when set, geometry is normalized before generation (e.g. 1280x800)")
	generateCatalogue := generateCmd.String("catalogue", "", "Optional TOML catalogue overlay file")

	saveDoc := saveCmd.String("doc", "", "Path to the template document JSON file (required)")
	saveDir := saveCmd.String("dir", defaultTemplatesDir, "Directory to store the generated artifact")
	saveCanvas := saveCmd.String("canvas", "", "Canvas size WxH in pixels; when set, geometry is normalized before generation")
	saveCatalogue := saveCmd.String("catalogue", "", "Optional TOML catalogue overlay file")

	listDir := listCmd.String("dir", defaultTemplatesDir, "Directory holding template artifacts")

	deleteName := deleteCmd.String("name", "", "Artifact name(s) to delete (comma-separated) (required)")
	deleteDir := deleteCmd.String("dir", defaultTemplatesDir, "Directory holding template artifacts")

	previewName := previewCmd.String("name", "", "Artifact name to preview (required)")
	previewDir := previewCmd.String("dir", defaultTemplatesDir, "Directory holding template artifacts")

	watchDoc := watchCmd.String("doc", "", "Path to the template document JSON file to watch (required)")
	watchDir := watchCmd.String("dir", defaultTemplatesDir, "Directory to store regenerated artifacts")
	watchCanvas := watchCmd.String("canvas", "", "Canvas size WxH in pixels; when set, geometry is normalized before generation")
	watchCatalogue := watchCmd.String("catalogue", "", "Optional TOML catalogue overlay file")

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "components":
		componentsCmd.Parse(os.Args[2:])
		handleComponents(*componentsCatalogue)
	case "generate":
		generateCmd.Parse(os.Args[2:])
		if *generateDoc == "" {
			fmt.Println("Error: -doc flag is required for generate command")
			generateCmd.Usage()
			os.Exit(1)
		}
		handleGenerate(*generateDoc, *generateCanvas, *generateCatalogue)
	case "save":
		saveCmd.Parse(os.Args[2:])
		if *saveDoc == "" {
			fmt.Println("Error: -doc flag is required for save command")
			saveCmd.Usage()
			os.Exit(1)
		}
		handleSave(*saveDoc, *saveDir, *saveCanvas, *saveCatalogue)
	case "list":
		listCmd.Parse(os.Args[2:])
		handleList(*listDir)
	case "delete":
		deleteCmd.Parse(os.Args[2:])
		if *deleteName == "" {
			fmt.Println("Error: -name flag is required for delete command")
			deleteCmd.Usage()
			os.Exit(1)
		}
		handleDelete(*deleteName, *deleteDir)
	case "preview":
		previewCmd.Parse(os.Args[2:])
		if *previewName == "" {
			fmt.Println("Error: -name flag is required for preview command")
			previewCmd.Usage()
			os.Exit(1)
		}
		handlePreview(*previewName, *previewDir)
	case "watch":
		watchCmd.Parse(os.Args[2:])
		if *watchDoc == "" {
			fmt.Println("Error: -doc flag is required for watch command")
			watchCmd.Usage()
			os.Exit(1)
		}
		handleWatch(*watchDoc, *watchDir, *watchCanvas, *watchCatalogue)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
	}
}

func printUsage() {
	fmt.Println("\nUsage: builder-cli <command> [options]")
	fmt.Println("Available commands:")
	fmt.Println("  components    List the component palette")
	fmt.Println("  generate -doc <file> [-canvas WxH]")
	fmt.Println("                Generate markup from a document and print it")
	fmt.Println("  save -doc <file> [-dir <dir>] [-canvas WxH]")
	fmt.Println("                Generate markup and save it as an artifact")
	fmt.Println("  list [-dir <dir>]")
	fmt.Println("                List stored template artifacts")
	fmt.Println("  delete -name <name,...> [-dir <dir>]")
	fmt.Println("                Delete artifacts by name")
	fmt.Println("  preview -name <name> [-dir <dir>]")
	fmt.Println("                Print an artifact with CMS regions sample-filled")
	fmt.Println("  watch -doc <file> [-dir <dir>] [-canvas WxH]")
	fmt.Println("                Regenerate the artifact whenever the document changes")
}

// buildRegistry loads the built-in palette plus an optional TOML
// catalogue overlay.
func buildRegistry(cataloguePath string) *registry.Registry {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reg := registry.Default(logger)
	if cataloguePath != "" {
		if err := reg.LoadFile(cataloguePath); err != nil {
			log.Fatalf("Error loading catalogue: %v", err)
		}
	}
	return reg
}

func loadDocument(path string) (*model.TemplateDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", path, err)
	}
	var doc model.TemplateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %q: %w", path, err)
	}
	return &doc, nil
}

// parseCanvas parses a "1280x800" flag value.
func parseCanvas(value string) (layout.CanvasMetrics, error) {
	parts := strings.SplitN(value, "x", 2)
	if len(parts) != 2 {
		return layout.CanvasMetrics{}, fmt.Errorf("canvas must look like 1280x800, got %q", value)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return layout.CanvasMetrics{}, fmt.Errorf("invalid canvas width %q: %w", parts[0], err)
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return layout.CanvasMetrics{}, fmt.Errorf("invalid canvas height %q: %w", parts[1], err)
	}
	return layout.CanvasMetrics{Width: w, Height: h}, nil
}

// generateMarkup runs the optional geometry normalization and the
// generator, printing placeholder warnings to stderr.
func generateMarkup(docPath, canvasSpec, cataloguePath string) (*generator.Result, *model.TemplateDocument, error) {
	doc, err := loadDocument(docPath)
	if err != nil {
		return nil, nil, err
	}

	if canvasSpec != "" {
		canvas, err := parseCanvas(canvasSpec)
		if err != nil {
			return nil, nil, err
		}
		absolute, err := layout.Absolutify(doc, canvas)
		if err != nil {
			return nil, nil, fmt.Errorf("absolutify failed: %w", err)
		}
		doc, err = layout.Relativize(absolute, canvas)
		if err != nil {
			return nil, nil, fmt.Errorf("relativize failed: %w", err)
		}
	}

	gen := generator.New(buildRegistry(cataloguePath))
	res, err := gen.Generate(doc)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	return res, doc, nil
}

func handleComponents(cataloguePath string) {
	reg := buildRegistry(cataloguePath)
	fmt.Println("\nComponent palette:")
	for _, def := range reg.Definitions() {
		kind := "leaf"
		if def.IsContainer {
			kind = "container"
		}
		fmt.Printf("- %s (%s, %s)\n", def.Type, def.Label, kind)
		for _, field := range def.EditableFields {
			fmt.Printf("    %s = %q\n", field, def.DefaultProperties[field])
		}
	}
}

func handleGenerate(docPath, canvasSpec, cataloguePath string) {
	res, _, err := generateMarkup(docPath, canvasSpec, cataloguePath)
	if err != nil {
		log.Fatalf("Error generating markup: %v", err)
	}
	fmt.Print(res.Markup)
}

func handleSave(docPath, dir, canvasSpec, cataloguePath string) {
	res, doc, err := generateMarkup(docPath, canvasSpec, cataloguePath)
	if err != nil {
		log.Fatalf("Error generating markup: %v", err)
	}

	store, err := storage.NewFileStore(dir)
	if err != nil {
		log.Fatalf("Error initializing template store: %v", err)
	}
	artifact, err := store.Save(doc.Name, res.Markup)
	if err != nil {
		log.Fatalf("Error saving artifact: %v", err)
	}
	fmt.Printf("Saved template %q to %s\n", doc.Name, artifact.Path)
}

func handleList(dir string) {
	store, err := storage.NewFileStore(dir)
	if err != nil {
		log.Fatalf("Error initializing template store: %v", err)
	}
	artifacts, err := store.List()
	if err != nil {
		log.Fatalf("Error listing artifacts: %v", err)
	}
	if len(artifacts) == 0 {
		fmt.Println("No template artifacts found.")
		return
	}
	fmt.Println("Found template artifacts:")
	for _, a := range artifacts {
		fmt.Printf("- %s (%s)\n", a.Name, a.Path)
	}
}

func handleDelete(names, dir string) {
	store, err := storage.NewFileStore(dir)
	if err != nil {
		log.Fatalf("Error initializing template store: %v", err)
	}
	for _, name := range strings.Split(names, ",") {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if err := store.Remove(trimmed); err != nil {
			log.Fatalf("Error deleting artifact %q: %v", trimmed, err)
		}
		fmt.Printf("Deleted artifact %q (if it existed).\n", trimmed)
	}
}

func handlePreview(name, dir string) {
	store, err := storage.NewFileStore(dir)
	if err != nil {
		log.Fatalf("Error initializing template store: %v", err)
	}
	engine := templating.NewEngine(store)
	out, err := engine.PreviewArtifact(name)
	if err != nil {
		log.Fatalf("Error generating preview: %v", err)
	}
	fmt.Print(out)
}

// handleWatch regenerates and saves the artifact every time the
// document file is written. Watches the parent directory because many
// editors replace files via rename, which drops a watch on the file
// itself.
func handleWatch(docPath, dir, canvasSpec, cataloguePath string) {
	absDoc, err := filepath.Abs(docPath)
	if err != nil {
		log.Fatalf("Error resolving document path: %v", err)
	}

	regenerate := func() {
		res, doc, err := generateMarkup(absDoc, canvasSpec, cataloguePath)
		if err != nil {
			log.Printf("Regeneration failed: %v", err)
			return
		}
		store, err := storage.NewFileStore(dir)
		if err != nil {
			log.Printf("Store init failed: %v", err)
			return
		}
		artifact, err := store.Save(doc.Name, res.Markup)
		if err != nil {
			log.Printf("Save failed: %v", err)
			return
		}
		fmt.Printf("Regenerated %s\n", artifact.Path)
	}

	regenerate()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Error creating watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absDoc)); err != nil {
		log.Fatalf("Error watching %s: %v", filepath.Dir(absDoc), err)
	}
	fmt.Printf("Watching %s for changes (Ctrl-C to stop)...\n", absDoc)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != absDoc {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				regenerate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}
