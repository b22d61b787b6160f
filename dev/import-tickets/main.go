package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cm-sla/sla-dashboard/internal/ado"
	"github.com/cm-sla/sla-dashboard/internal/db"
)

// workItemBatch is the shape of a saved workitemsbatch response.
type workItemBatch struct {
	Value []ado.WorkItem `json:"value"`
}

func main() {
	file := flag.String("file", "", "JSON file of work items (an array, or a saved batch response with a \"value\" array)")
	dbPath := flag.String("db", "sla.db", "SQLite database path")
	replace := flag.Bool("replace", false, "delete tickets that are not in the file")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	items, err := decodeWorkItems(data)
	if err != nil {
		log.Fatalf("decode %s: %v", *file, err)
	}
	log.Printf("read %d work items from %s", len(items), *file)

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	ctx := context.Background()
	var kept []int
	skipped := 0
	for _, item := range items {
		t, ok := ado.ParseWorkItem(item)
		if !ok {
			log.Printf("skip work item %d: no created date", item.ID)
			skipped++
			continue
		}
		if err := database.UpsertTicket(ctx, &t); err != nil {
			log.Fatalf("store ticket %d: %v", t.ID, err)
		}
		kept = append(kept, t.ID)
	}

	if *replace {
		removed, err := database.DeleteTicketsNotIn(ctx, kept)
		if err != nil {
			log.Fatalf("prune tickets: %v", err)
		}
		log.Printf("removed %d tickets not in the file", removed)
	}

	log.Printf("imported %d tickets (%d skipped) into %s", len(kept), skipped, *dbPath)
}

func decodeWorkItems(data []byte) ([]ado.WorkItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	if data[0] == '[' {
		var items []ado.WorkItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var batch workItemBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return batch.Value, nil
}
