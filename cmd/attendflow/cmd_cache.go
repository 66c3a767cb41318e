package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/attendflow/attendflow/internal/app"
)

func cmdCache(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow cache <status|clear>")
	}

	switch args[0] {
	case "status":
		entries, err := a.Cache.Status(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty")
			return nil
		}
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tAGE\tREMAINING\tSIZE\tSTATE")
		for _, k := range keys {
			e := entries[k]
			state := "fresh"
			switch {
			case e.Error != "":
				state = "corrupt: " + e.Error
			case e.Expired:
				state = "expired"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", k, e.Age.Round(time.Second), e.Remaining.Round(time.Second), e.Size, state)
		}
		return w.Flush()
	case "clear":
		if err := a.Cache.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	default:
		return fmt.Errorf("unknown cache command: %s", args[0])
	}
}
