package translog

import (
	"fmt"

	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/internal/pool"
	"github.com/arloliu/slipstate/record"
)

// window is a run of decoded records starting at record index start.
// A refill produces a new window; the previous one is dropped whole.
type window struct {
	start   int64
	records []record.Transition
}

func (w window) contains(i int64) bool {
	return i >= w.start && i < w.start+int64(len(w.records))
}

// read makes record i resident and returns its offset inside l.win.
func (l *Log) read(i int64) (int, error) {
	if l.win.contains(i) {
		return int(i - l.win.start), nil
	}

	backward := len(l.win.records) > 0 && i < l.win.start

	w, err := l.refill(i)
	if err != nil {
		return 0, err
	}

	l.win = w
	l.stats.BatchReads++
	if backward {
		l.stats.BackwardReads++
	}

	return 0, nil
}

// refill decodes up to windowSize records starting at record i with a
// single ReadAt.
func (l *Log) refill(i int64) (window, error) {
	n := int(min(int64(l.windowSize), l.count-i))

	buf := pool.GetWindowBuffer()
	defer pool.PutWindowBuffer(buf)

	data := buf.Resize(n * record.Size)
	if err := readFull(l.r, data, i*record.Size); err != nil {
		return window{}, fmt.Errorf("read records [%d, %d): %w", i, i+int64(n), err)
	}

	records := make([]record.Transition, n)
	for k := range records {
		tr := &records[k]
		if err := tr.Parse(data[k*record.Size:], l.engine); err != nil {
			return window{}, fmt.Errorf("decode record %d: %w", i+int64(k), err)
		}
		if l.zeroBasedIDs {
			tr.PatchID++
		}
		if k > 0 && tr.Time < records[k-1].Time {
			return window{}, fmt.Errorf("%w: record %d at %v follows %v",
				errs.ErrOutOfOrder, i+int64(k), tr.Time, records[k-1].Time)
		}
	}

	l.stats.RecordsDecoded += int64(n)
	l.logger.Debug().Int64("start", i).Int("records", n).Msg("window refill")

	return window{start: i, records: records}, nil
}
