// Package internal hosts the development-only Badger inspector: a tiny HTML
// view over the raw key space plus the live chat counters. Never exposed in
// a deployment unless DEBUG_PORT is set.
package internal

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
)

var (
	resumeChan  = make(chan struct{}, 1)
	currentPort int
)

const inspectPage = `<!DOCTYPE html>
<html>
<head><title>Badger Inspector</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
.stats span { display: inline-block; margin-right: 2em; }
</style></head>
<body>
<h1>Badger Inspector</h1>
<div class="stats">{{range $k, $v := .Stats}}<span>{{$k}}: <b>{{$v}}</b></span>{{end}}</div>
<form method="get"><input name="prefix" value="{{.Prefix}}"><button>Filter</button></form>
<table>
<tr><th>Key</th><th>Type</th><th>Timestamp</th><th>Entity</th><th>Detail</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Type}}</td><td>{{.Timestamp}}</td><td>{{.EntityID}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>
</body>
</html>`

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// Inspect starts the server, runs fn, then blocks until /resume is hit.
// Used by tests that want a human look at the key space mid-scenario.
func Inspect(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider, prefix string, fn func()) {
	StartDebugServer(db, port, endpoint, mapper, statsProvider)

	if fn != nil {
		fn()
	}

	Wait(prefix)
}

func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	currentPort = port
	mux := http.NewServeMux()
	tmpl := template.Must(template.New("inspect").Parse(inspectPage))

	if mapper == nil {
		mapper = SessionMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "session:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resume", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-resumeChan:
		default:
		}
		resumeChan <- struct{}{}
		fmt.Fprint(w, "RESUMED")
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func Wait(prefix string) {
	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=%s", currentPort, prefix)
	fmt.Printf("\n--- TEST PAUSED ---\n\n%s\n\n-------------------\n", url)
	<-resumeChan
}

// SessionMapper renders the study-session key space: session registry
// entries, message log entries, friendships and user records.
func SessionMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	if len(parts) == 0 {
		return row
	}

	switch parts[0] {
	case "session":
		row.Type = "SESSION"
		if len(parts) > 1 {
			row.EntityID = parts[1]
		}
		var members []string
		if err := json.Unmarshal(val, &members); err == nil {
			row.Detail = fmt.Sprintf("%d member(s): %s", len(members), strings.Join(members, ", "))
		}
	case "msg":
		row.Type = "MESSAGE"
		if len(parts) >= 4 {
			row.EntityID = parts[1]
			if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				row.Timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
			}
			var msg struct {
				Author  string `json:"author"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(val, &msg); err == nil {
				row.Detail = msg.Author + ": " + truncate(msg.Content, 60)
			}
		}
	case "friend":
		row.Type = "FRIENDSHIP"
		if len(parts) == 3 {
			row.EntityID = parts[1]
			row.Detail = parts[1] + " <-> " + parts[2]
		}
	case "user", "cred":
		row.Type = strings.ToUpper(parts[0])
		if len(parts) > 1 {
			row.EntityID = parts[1]
		}
	}
	return row
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// MonitorStats adapts the chat counters into the inspector's stats banner.
func MonitorStats(m *observability.Monitor) StatsProvider {
	return func() map[string]any {
		stats := m.GetLatest()
		return map[string]any{
			"uptime":      m.Uptime().String(),
			"connections": stats.ConnectionsOpen,
			"sessions":    stats.SessionsCreated,
			"joins":       stats.Joins,
			"leaves":      stats.Leaves,
			"stored":      stats.MessagesStored,
			"delivered":   stats.BroadcastsDelivered,
			"dropped":     stats.BroadcastsDropped,
		}
	}
}
