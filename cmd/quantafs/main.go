package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/config"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/vfs"
)

// seedWorkspace creates a small sample workspace exercising the ordering
// operations: anchored inserts, a pullup folder, and a nested subtree.
func seedWorkspace(ctx context.Context, engine *vfs.Engine) error {
	docs, err := engine.Insert(ctx, "/", "docs", node.KindFolder, nil, vfs.AnchorEnd())
	if err != nil {
		return fmt.Errorf("failed to create docs folder: %w", err)
	}

	textFiles := []struct {
		name    string
		content string
	}{
		{"welcome.md", "Welcome to the workspace.\n"},
		{"roadmap.md", "## Roadmap\n\n- ordering engine\n- move protocol\n"},
		{"notes.md", "Some working notes.\n"},
	}
	for _, txt := range textFiles {
		if _, err := engine.Insert(ctx, "/docs", txt.name, node.KindText, []byte(txt.content), vfs.AnchorEnd()); err != nil {
			return fmt.Errorf("failed to create %s: %w", txt.name, err)
		}
	}

	// An intro inserted at the top shifts everything else down by one.
	if _, err := engine.Insert(ctx, "/docs", "intro.md", node.KindText, []byte("Read me first.\n"), vfs.AnchorStart()); err != nil {
		return fmt.Errorf("failed to create intro.md: %w", err)
	}

	// A pullup folder renders its children inline in the docs listing.
	if _, err := engine.Insert(ctx, "/docs", "attachments_", node.KindFolder, nil, vfs.AnchorEnd()); err != nil {
		return fmt.Errorf("failed to create attachments folder: %w", err)
	}
	if _, err := engine.Insert(ctx, "/docs/attachments_", "diagram.png", node.KindBinary, []byte("PNG bytes"), vfs.AnchorEnd()); err != nil {
		return fmt.Errorf("failed to create diagram.png: %w", err)
	}

	// A nested subtree for move experiments.
	if _, err := engine.Insert(ctx, "/docs", "archive", node.KindFolder, nil, vfs.AnchorEnd()); err != nil {
		return fmt.Errorf("failed to create archive folder: %w", err)
	}
	if _, err := engine.Insert(ctx, "/docs/archive", "old-notes.md", node.KindText, []byte("Archived.\n"), vfs.AnchorEnd()); err != nil {
		return fmt.Errorf("failed to create old-notes.md: %w", err)
	}

	logger.Info("seeded sample workspace under %s", "/"+docs.Name)
	return nil
}

// printTree writes an indented listing of the subtree at folder.
func printTree(ctx context.Context, engine *vfs.Engine, folder string, depth int) error {
	children, err := engine.Children(ctx, folder)
	if err != nil {
		return err
	}
	for _, child := range children {
		marker := ""
		if child.IsFolder() {
			marker = "/"
		}
		fmt.Printf("%s%4d  %s%s\n", strings.Repeat("  ", depth), child.Ordinal, child.Name, marker)
		if child.IsFolder() {
			if err := printTree(ctx, engine, node.JoinPath(folder, child.Name), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/quantafs/config.yaml)")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	seed := flag.Bool("seed", false, "Seed a sample workspace")
	check := flag.Bool("check", false, "Verify the ordinal invariant over the whole tree")
	list := flag.Bool("list", false, "Print the workspace tree")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)
	if cfg.Logging.Output != "" {
		f, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nodeStore, err := config.CreateNodeStore(ctx, cfg.Node)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer nodeStore.Close()

	contentStore, err := config.CreateContentStore(ctx, cfg.Content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer contentStore.Close()

	engine := vfs.New(nodeStore, contentStore)

	if *seed {
		if err := seedWorkspace(ctx, engine); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *check {
		if err := engine.VerifyTree(ctx, "/"); err != nil {
			fmt.Fprintf(os.Stderr, "invariant violation: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ordinal invariant holds for all folders")
	}

	if *list {
		if err := printTree(ctx, engine, "/", 0); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if !*seed && !*check && !*list {
		flag.Usage()
	}
}
