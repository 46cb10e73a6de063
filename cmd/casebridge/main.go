package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jgivc/casebridge/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	createLabel := flag.String("create", "", "Create a new investigation with the given label and exit")
	deleteIDs := flag.String("delete", "", "Comma-separated collection ids to delete and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(*cfgFileName)

	var err error
	switch {
	case *createLabel != "":
		err = a.CreateCollection(ctx, *createLabel)
	case *deleteIDs != "":
		err = a.DeleteCollections(ctx, strings.Split(*deleteIDs, ","))
	default:
		archivePath := flag.Arg(0)
		if archivePath == "" {
			fmt.Fprintln(os.Stderr, "usage: casebridge [-c config.yml] <case-archive.zip>")
			os.Exit(2)
		}

		err = a.Upload(ctx, archivePath)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
