package api

import (
	"io"
	"sync"
)

// ProgressFunc receives upload progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// progressReader reports monotonic percentages as the transport consumes
// the request body.
type progressReader struct {
	reader io.Reader
	total  int64

	mu   sync.Mutex
	read int64
	last int
	fn   ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{reader: r, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		percent := 100
		if p.total > 0 && p.read < p.total {
			percent = int(p.read * 100 / p.total)
		}
		p.mu.Unlock()
		p.report(percent)
	}
	if err == io.EOF {
		p.report(100)
	}
	return n, err
}

func (p *progressReader) report(percent int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	if percent <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = percent
	p.mu.Unlock()
	p.fn(percent)
}
