// Command tabulon-demo serves a single page with a tabulator output bound to
// a CSV-backed producer (or a MySQL query when configured). It is the
// runnable counterpart of the package documentation: one session per page
// view, one bound output, payloads fetched by the bundled client script.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tabulon-io/tabulon"
	"github.com/tabulon-io/tabulon/lib/tablesource"
)

type config struct {
	Addr string `toml:"addr"`
	Key  string `toml:"key"`
	CSV  string `toml:"csv"`

	MySQL struct {
		DSN   string `toml:"dsn"`
		Query string `toml:"query"`
	} `toml:"mysql"`
}

func loadConfig(path string) (config, error) {
	cfg := config{
		Addr: ":8080",
		Key:  "tabulon-demo-key",
		CSV:  "data/mtcars.csv",
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "demo.toml", "path to TOML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load config: %v", err)
	}

	reg := tabulon.NewRegistry([]byte(cfg.Key))

	mux := http.NewServeMux()
	mux.Handle("/_t/", reg.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if n, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && n > 0 {
			limit = n
		}

		// One session per page view; sessions live until shutdown in this
		// demo. A production host would tear them down when the page goes
		// away.
		sess := reg.NewSession()
		if err := sess.Outputs().BindTabulator("tabulatorTable", producerFor(cfg, limit)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		page, err := reg.NewPage(sess)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tabulon.Render(w, r, demoPage(page, limit)); err != nil {
			log.Printf("render: %v", err)
		}
	})

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	banner(cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// producerFor returns the output's value source: a MySQL query when a DSN is
// configured, the CSV file otherwise.
func producerFor(cfg config, limit int) tabulon.Producer {
	if cfg.MySQL.DSN != "" {
		return func(ctx context.Context) (any, error) {
			db, err := sql.Open("mysql", cfg.MySQL.DSN)
			if err != nil {
				return nil, err
			}
			defer db.Close()

			rows, err := db.QueryContext(ctx, cfg.MySQL.Query)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			t, err := tablesource.FromRows(rows)
			if err != nil {
				return nil, err
			}
			return head(t, limit)
		}
	}
	return func(ctx context.Context) (any, error) {
		f, err := os.Open(cfg.CSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		t, err := tablesource.FromCSV(f)
		if err != nil {
			return nil, err
		}
		return head(t, limit)
	}
}

// head returns a table with at most n of t's rows, schema unchanged.
func head(t *tabulon.Table, n int) (*tabulon.Table, error) {
	rows := t.Rows()
	if n > len(rows) {
		n = len(rows)
	}

	names, kinds := t.ColumnNames(), t.Kinds()
	cols := make([]tabulon.Column, len(names))
	for i := range names {
		cols[i] = tabulon.Col(names[i], kinds[i])
	}
	out, err := tabulon.NewTable(cols...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows[:n] {
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// demoPage assembles the page shell. The mount point is created before Head
// renders so the tabulator bundle is registered by the time the head tags
// are written.
func demoPage(p *tabulon.Page, limit int) templ.Component {
	table := tabulon.OutputTabulator(p, "tabulatorTable", tabulon.WithHeight("400px"))

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>tabulon demo</title>`); err != nil {
			return err
		}
		if err := p.Head().Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `</head><body><h1>tabulon demo</h1><form method="get"><label>Number of rows to show <input type="number" name="n" value="%s" min="1" max="50"></label> <button type="submit">Reload</button></form>`, html.EscapeString(strconv.Itoa(limit))); err != nil {
			return err
		}
		if err := table.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func banner(cfg config) {
	color.New(color.FgGreen, color.Bold).Println("tabulon demo")
	source := cfg.CSV
	if cfg.MySQL.DSN != "" {
		source = "mysql"
	}
	fmt.Printf("  listening on %s, serving %s\n", cfg.Addr, source)
}
