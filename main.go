// main.go
package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/dotkaio/kIDE/internal/config"
	"github.com/dotkaio/kIDE/internal/disk"
	"github.com/dotkaio/kIDE/internal/rows"
	"github.com/dotkaio/kIDE/internal/scope"
	"github.com/dotkaio/kIDE/internal/workspace"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	showHelp = flag.Bool("h", false, "Show help")
	version  = flag.Bool("version", false, "Show version")
	debug    = flag.Bool("debug", false, "Verbose core logging")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("kIDE v%s\n", appVersion)
		return
	}

	if *showHelp {
		showUsage()
		return
	}

	level := "error"
	if *debug {
		level = "debug"
	}
	logging.SetLogLevel("workspace", level)
	logging.SetLogLevel("document", level)

	args := flag.Args()

	// No arguments - run desktop UI
	if len(args) == 0 {
		runDesktopApp()
		return
	}

	switch command := args[0]; command {
	case "tree":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: tree command requires a directory path")
			fmt.Fprintln(os.Stderr, "Usage: kide tree <directory>")
			os.Exit(1)
		}
		runCLITree(args[1])

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		fmt.Fprintln(os.Stderr)
		showUsage()
		os.Exit(1)
	}
}

func runDesktopApp() {
	cfgDir := configDir()
	cfgPath := filepath.Join(cfgDir, "kide.json")

	cfg, _, err := config.Ensure(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := NewApp(cfg, cfgPath, cfgDir)

	err = wails.Run(&options.App{
		Title:  "kIDE",
		Width:  cfg.Viewer.WindowWidth,
		Height: cfg.Viewer.WindowHeight,

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind:       []any{app},
	})
	if err != nil {
		log.Fatal(err)
	}
}

// runCLITree opens a workspace headlessly, expands every directory and
// prints the flattened projection. Useful for sanity-checking the tree
// without a display.
func runCLITree(dirArg string) {
	absDir, err := filepath.Abs(dirArg)
	if err != nil {
		log.Fatalf("Invalid directory: %v", err)
	}
	if stat, err := os.Stat(absDir); err != nil || !stat.IsDir() {
		log.Fatalf("Directory does not exist: %s", absDir)
	}

	ctx := context.Background()
	tree := workspace.NewTree(disk.NewOS(), scope.NoGuard{})
	tree.Open(ctx, absDir)

	// expand breadth-first until no new directories appear
	for {
		grew := false
		for _, row := range flatten(ctx, tree) {
			if row.IsDir && !tree.IsExpanded(row.Path) {
				tree.Expand(ctx, row.Path)
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	fmt.Println(absDir)
	for _, row := range flatten(ctx, tree) {
		marker := ""
		if row.IsDir {
			marker = "/"
		}
		fmt.Printf("%s%s%s\n", strings.Repeat("  ", row.Depth+1), row.Name, marker)
	}

	tree.Close()
}

func flatten(ctx context.Context, tree *workspace.Tree) []rows.Row {
	return rows.Flatten(tree.Root(), tree.IsExpanded, func(dir string) []disk.Entry {
		return tree.Children(ctx, dir)
	})
}

// configDir is where kide.json and the history database live.
func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "kide")
}

func showUsage() {
	fmt.Println("kIDE - minimal code editor shell")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kide                  Run desktop application (default)")
	fmt.Println("  kide tree <directory> Print the fully expanded workspace tree")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version")
	fmt.Println("  -debug    Verbose core logging")
}
