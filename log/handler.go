package log

import (
	"io"
	"sync"
)

// Handler writes a Record somewhere. Log must never panic: a broken sink
// degrades logging, it never aborts the crawl.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a plain function into a Handler.
type FuncHandler func(r *Record) error

func (f FuncHandler) Log(r *Record) error { return f(r) }

// StreamHandler writes every record, formatted by fmtr, to wr. A mutex
// serializes writes since the Discovery Engine logs from many goroutines
// at once.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler drops records more verbose than maxLvl before they
// reach h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler in hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}
