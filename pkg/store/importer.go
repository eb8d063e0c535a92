package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

const defaultImportBatch = 5000

// ImportTrades reads newline delimited JSON trade rows (one exported document
// per line) and appends them. It returns the number of rows stored.
func (s *Store) ImportTrades(ctx context.Context, r io.Reader, batch int) (int, error) {
	return importJSONL(ctx, r, batch, "trades", s.PutTrades)
}

// ImportRents is ImportTrades for rent rows.
func (s *Store) ImportRents(ctx context.Context, r io.Reader, batch int) (int, error) {
	return importJSONL(ctx, r, batch, "rents", s.PutRents)
}

func importJSONL[T any](ctx context.Context, r io.Reader, batch int, kind string, put func([]T) error) (int, error) {
	if batch <= 0 {
		batch = defaultImportBatch
	}

	dec := json.NewDecoder(r)
	rows := make([]T, 0, batch)
	total := 0

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := put(rows); err != nil {
			return err
		}
		total += len(rows)
		rows = rows[:0]
		log.Debugf("%s: imported %s rows", kind, humanize.Comma(int64(total)))
		return nil
	}

	for {
		var row T
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("import %s row %d: %w", kind, total+len(rows)+1, err)
		}
		rows = append(rows, row)

		if len(rows) == batch {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

var _ apartment.Corpus = (*Store)(nil)
