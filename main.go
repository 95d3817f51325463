package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"push_to_gdoc/filler"
	"push_to_gdoc/generator"
	"push_to_gdoc/server"
	"push_to_gdoc/values"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	docID := flag.String("doc", "", "Google Docs document id")
	valuesPath := flag.String("values", "", "path to values file (YAML or JSON)")
	list := flag.Bool("list", false, "print the markers found in --doc and exit")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	if err := checkFlags(*serve, *list, *docID, *valuesPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := filler.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	f, err := newFiller(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		writer, err := buildWriter(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		srv, err := server.New(f, writer, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *list {
		occs, err := f.Markers(ctx, *docID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(occs); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	writer, err := buildWriter(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	mapping, err := values.Load(ctx, *valuesPath, writer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Printf("[cli] filling doc=%s values=%s markers=%d", *docID, *valuesPath, len(mapping))
	if err := f.Replace(ctx, *docID, mapping); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Printf("[cli] fill done doc=%s", *docID)
}

// checkFlags runs before any config or credentials are read.
func checkFlags(serve, list bool, docID, valuesPath string) error {
	if serve {
		return nil
	}
	if docID == "" {
		return errors.New("--doc is required")
	}
	if !list && valuesPath == "" {
		return errors.New("--values is required")
	}
	return nil
}

func newFiller(ctx context.Context, cfg filler.Config) (*filler.Filler, error) {
	svc, err := filler.NewServices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return filler.New(
		filler.NewDocumentService(svc.Docs),
		filler.NewDriveImageHost(svc.Drive, cfg.ImageFolderID),
		verbose,
		log.Default(),
	)
}

// buildWriter returns a nil Writer when no llm is configured; prompt values
// are then rejected.
func buildWriter(cfg filler.Config) (values.Writer, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, nil
	}
	llm, err := generator.NewLLM(&generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		return nil, err
	}
	return agent, nil
}
