// Package blizzard assembles the Blizzard feature stream: shuffled records
// are cleaned, sorted into length-homogeneous batches, padded, cut to a
// common length, segmented into overlapping windows, given voicing flags,
// normalized and converted to tensors.
//
//	st, _ := blizzard.New(store, statistics, blizzard.Options{BatchSize: 64}, log)
//	it := st.Epoch(ctx)
//	defer it.Close()
//	for {
//	    out, ok, err := it.Next(ctx)
//	    ...
//	}
//
// Every pass over Stream.Pipeline is one epoch with a fresh shuffle and
// fresh segmenter buffers.
package blizzard
