package main

// Re-drive text extraction for documents still awaiting it:
//   go run ./cmd/backfill

import (
	"context"
	"log"
	"os"

	"docbase-backend/internal/bootstrap"
	"docbase-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Printf("bootstrap error: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	docs, err := app.Documents.ListUnprocessed(ctx)
	if err != nil {
		log.Printf("failed to list unprocessed documents: %v", err)
		os.Exit(1)
	}
	log.Printf("found %d unprocessed documents", len(docs))

	for _, doc := range docs {
		app.Documents.ProcessContent(ctx, doc.ID)
	}
}
