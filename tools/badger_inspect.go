package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "session:", "Prefix to scan (session:, msg:, friend:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append(describe(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe renders one key/value pair into a table row depending on its
// namespace. Values are JSON; anything unreadable degrades to a size dump.
func describe(key string, val []byte) []string {
	parts := strings.Split(key, ":")
	kind := "RAW"
	timestamp := "--:--:--"
	entityID := "--------"
	detail := fmt.Sprintf("Size: %d bytes", len(val))

	switch parts[0] {
	case "session":
		kind = "SESSION"
		if len(parts) > 1 {
			entityID = parts[1]
		}
		var members []string
		if err := json.Unmarshal(val, &members); err == nil {
			detail = fmt.Sprintf("%d member(s): %s", len(members), strings.Join(members, ", "))
		}
	case "msg":
		kind = "MESSAGE"
		if len(parts) >= 4 {
			entityID = parts[3]
			if len(entityID) > 8 {
				entityID = entityID[:8]
			}
			if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
			}
			var msg struct {
				Author  string `json:"author"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(val, &msg); err == nil {
				detail = msg.Author + ": " + msg.Content
			}
		}
	case "friend":
		kind = "FRIENDSHIP"
		if len(parts) == 3 {
			entityID = parts[1]
			detail = parts[1] + " <-> " + parts[2]
		}
	case "user":
		kind = "USER"
		if len(parts) > 1 {
			entityID = parts[1]
		}
		var profile struct {
			Country string `json:"country"`
		}
		if err := json.Unmarshal(val, &profile); err == nil {
			detail = "country=" + profile.Country
		}
	case "cred":
		kind = "CREDENTIALS"
		if len(parts) > 1 {
			entityID = parts[1]
		}
		detail = "argon2id hash"
	}

	return []string{key, kind, timestamp, entityID, detail}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}
