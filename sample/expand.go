// Package sample derives public matrices, secret noise and challenge
// polynomials from seeds and entropy streams.
package sample

import (
	"math/bits"
	"runtime"
	"sync"

	qfs "github.com/talari30/Q-file-share"
	"github.com/talari30/Q-file-share/utils"
)

// SHAKE rates in bytes. XOF output is consumed one block at a time.
const (
	shake128Rate = 168
	shake256Rate = 136
)

// ExpandMatrix derives the rows x cols signature matrix from seed.
// Cell (i, j) reads SHAKE128(seed || i || j) as 3-byte little-endian chunks
// masked to the bit length of q-1 and rejects values >= q.
func ExpandMatrix(seed []byte, rows, cols int, q int64, n int) qfs.Matrix {
	return expand(rows, cols, func(i, j int) qfs.Polynomial {
		return uniformPoly(seed, i, j, q, n)
	})
}

// ExpandMatrixKyber derives the rows x cols encryption matrix from seed.
// Every 3 bytes of SHAKE128(seed || i || j) yield two 12-bit candidates
// and values >= q are rejected.
func ExpandMatrixKyber(seed []byte, rows, cols int, q int64, n int) qfs.Matrix {
	return expand(rows, cols, func(i, j int) qfs.Polynomial {
		return uniformPoly12(seed, i, j, q, n)
	})
}

func nonce(i, j int) []byte {
	return []byte{byte(i), byte(j)}
}

func uniformPoly(seed []byte, i, j int, q int64, n int) qfs.Polynomial {
	h := utils.NewShake128(seed, nonce(i, j))
	mask := int64(1)<<bits.Len64(uint64(q-1)) - 1

	var buf [shake128Rate]byte
	p := make(qfs.Polynomial, n)
	for k := 0; k < n; {
		_, _ = h.Read(buf[:])
		for off := 0; off+3 <= len(buf) && k < n; off += 3 {
			d := (int64(buf[off]) | int64(buf[off+1])<<8 | int64(buf[off+2])<<16) & mask
			if d < q {
				p[k] = d
				k++
			}
		}
	}
	return p
}

func uniformPoly12(seed []byte, i, j int, q int64, n int) qfs.Polynomial {
	h := utils.NewShake128(seed, nonce(i, j))

	var buf [shake128Rate]byte
	p := make(qfs.Polynomial, n)
	for k := 0; k < n; {
		_, _ = h.Read(buf[:])
		for off := 0; off+3 <= len(buf) && k < n; off += 3 {
			d0 := (int64(buf[off]) | int64(buf[off+1])<<8) & 0xFFF
			d1 := (int64(buf[off+1])>>4 | int64(buf[off+2])<<4) & 0xFFF
			if d0 < q {
				p[k] = d0
				k++
			}
			if k < n && d1 < q {
				p[k] = d1
				k++
			}
		}
	}
	return p
}

// expand fills a rows x cols matrix, splitting cells across workers when
// there is enough of them. Each cell only depends on its own indices, so
// the result does not depend on scheduling.
func expand(rows, cols int, cell func(i, j int) qfs.Polynomial) qfs.Matrix {
	a := make(qfs.Matrix, rows)
	for i := range a {
		a[i] = make([]qfs.Polynomial, cols)
	}
	total := rows * cols
	if total == 0 {
		return a
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if total < 4 || numWorkers <= 1 {
		for idx := 0; idx < total; idx++ {
			a[idx/cols][idx%cols] = cell(idx/cols, idx%cols)
		}
		return a
	}

	var wg sync.WaitGroup
	perWorker := (total + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := min(start+perWorker, total)
		if start >= total {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for idx := start; idx < end; idx++ {
				a[idx/cols][idx%cols] = cell(idx/cols, idx%cols)
			}
		}(start, end)
	}
	wg.Wait()
	return a
}
