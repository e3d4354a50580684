// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"testing"
)

// Ledger records are small: a prefixed name+symbol key and a short
// payer-tagged payload. The benchmark mirrors that shape, including the
// deletes a zero-balance erase produces.
const (
	recordsPerBatch = 100_000
	recordKeySize   = 17
	recordValSize   = 25
)

func benchRecordKey(i int) []byte {
	k := make([]byte, recordKeySize)
	k[0] = 0x1
	binary.BigEndian.PutUint64(k[1:], uint64(i))
	binary.BigEndian.PutUint64(k[9:], uint64(i%64))
	return k
}

func benchRecordValue() []byte {
	v := make([]byte, recordValSize)
	if _, err := rand.Read(v); err != nil {
		panic(err)
	}
	return v
}

func BenchmarkRecordBatches(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(b.TempDir(), cfg)
			if err != nil {
				b.Fatal(err)
			}

			keys := make([][]byte, recordsPerBatch)
			for i := 0; i < recordsPerBatch; i++ {
				keys[i] = benchRecordKey(i)
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j, k := range keys {
					// Every fourth record is erased on rewrite,
					// matching balance records debited to zero.
					if i > 0 && j%4 == 0 {
						if err := batch.Delete(k); err != nil {
							b.Fatal(err)
						}
						continue
					}
					if err := batch.Put(k, benchRecordValue()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
